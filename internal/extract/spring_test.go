package extract

import (
	"testing"

	"github.com/mehmetkoksal-w/routemap/internal/analysis"
)

const springReportController = `package com.example.reports;

import org.springframework.web.bind.annotation.*;

@RestController
@RequestMapping("/api/v1")
public class ReportController {

    @GetMapping("/reports")
    public ResponseEntity<List<Report>> listReports(
            @RequestHeader(value = "Authorization") String token,
            @RequestParam String org_id,
            @RequestParam String period_id,
            @RequestParam String collection_id,
            @RequestParam(value = "name_group") String groupName,
            @RequestParam String status) {
        return ResponseEntity.ok(List.of());
    }

    @PostMapping("/reports")
    public ResponseEntity<Report> createReport(@RequestBody ReportRequest request) {
        return ResponseEntity.ok(null);
    }

    @GetMapping("/reports/{id}")
    public ResponseEntity<Report> getReport(@PathVariable("id") String reportId) {
        return ResponseEntity.ok(null);
    }

    @RequestMapping(value = "/reports/{id}", method = RequestMethod.DELETE)
    public ResponseEntity<Void> deleteReport(@PathVariable String id) {
        return ResponseEntity.noContent().build();
    }
}
`

func springUnits(t *testing.T, source string) map[string]*analysis.SourceUnit {
	t.Helper()
	tree := analysis.NewSourceUnit("ReportController.java", []byte(source))
	if tree.Mode() != analysis.ModeTree {
		t.Fatal("fixture did not parse into tree mode")
	}
	text := analysis.NewTextUnit("ReportController.java", []byte(source))
	t.Cleanup(func() {
		tree.Close()
		text.Close()
	})
	return map[string]*analysis.SourceUnit{"tree": tree, "text": text}
}

func TestSpringExtractorRoutes(t *testing.T) {
	for mode, unit := range springUnits(t, springReportController) {
		t.Run(mode, func(t *testing.T) {
			ex := NewSpringExtractor()
			candidates := ex.Locate(unit)
			if len(candidates) != 4 {
				t.Fatalf("located %d candidates, want 4", len(candidates))
			}
			got := make(map[string]bool)
			for i := range candidates {
				c := &candidates[i]
				ep, ok := normalize(c, ex.ResolveParameters(unit, c), unit.Path)
				if !ok {
					t.Fatalf("candidate %s %s dropped unexpectedly", c.Method, c.RawPath)
				}
				got[ep.Method+" "+ep.Path] = true
			}
			want := []string{
				"GET /api/v1/reports",
				"POST /api/v1/reports",
				"GET /api/v1/reports/{id}",
				"DELETE /api/v1/reports/{id}",
			}
			for _, w := range want {
				if !got[w] {
					t.Errorf("missing endpoint %q, got %v", w, got)
				}
			}
		})
	}
}

// A wrapped multi-parameter signature must yield one descriptor per
// declared parameter, with the annotation name winning over the
// variable name.
func TestSpringExtractorAllParameters(t *testing.T) {
	for mode, unit := range springUnits(t, springReportController) {
		t.Run(mode, func(t *testing.T) {
			ex := NewSpringExtractor()
			var listParams []Parameter
			candidates := ex.Locate(unit)
			for i := range candidates {
				c := &candidates[i]
				if c.Method == "GET" && c.RawPath == "/api/v1/reports" {
					listParams = ex.ResolveParameters(unit, c)
				}
			}
			want := []Parameter{
				{Name: "Authorization", Kind: ParamHeader, Identifier: "token"},
				{Name: "org_id", Kind: ParamQuery, Identifier: "org_id"},
				{Name: "period_id", Kind: ParamQuery, Identifier: "period_id"},
				{Name: "collection_id", Kind: ParamQuery, Identifier: "collection_id"},
				{Name: "name_group", Kind: ParamQuery, Identifier: "groupName"},
				{Name: "status", Kind: ParamQuery, Identifier: "status"},
			}
			if len(listParams) != len(want) {
				t.Fatalf("resolved %d parameters, want %d: %+v", len(listParams), len(want), listParams)
			}
			for i, p := range listParams {
				if p.Name != want[i].Name || p.Kind != want[i].Kind {
					t.Errorf("parameter %d = %+v, want %+v", i, p, want[i])
				}
			}
		})
	}
}

func TestSpringExtractorPrecedence(t *testing.T) {
	src := `package demo;

@RestController
public class C {

    @GetMapping("/items")
    public String items(
            @RequestParam(value = "page_size") int pageSize,
            @PathVariable("item_id") String itemId,
            @CookieValue(value = "session_token") String session) {
        return "";
    }
}
`
	for mode, unit := range springUnits(t, src) {
		t.Run(mode, func(t *testing.T) {
			ex := NewSpringExtractor()
			candidates := ex.Locate(unit)
			if len(candidates) != 1 {
				t.Fatalf("located %d candidates, want 1", len(candidates))
			}
			params := ex.ResolveParameters(unit, &candidates[0])
			if len(params) != 3 {
				t.Fatalf("resolved %d parameters, want 3: %+v", len(params), params)
			}
			for _, p := range params {
				switch p.Kind {
				case ParamQuery:
					if p.Name != "page_size" {
						t.Errorf("query name = %q, want page_size", p.Name)
					}
				case ParamPath:
					if p.Name != "item_id" {
						t.Errorf("path name = %q, want item_id", p.Name)
					}
				case ParamCookie:
					if p.Name != "session_token" {
						t.Errorf("cookie name = %q, want session_token", p.Name)
					}
				default:
					t.Errorf("unexpected kind %q", p.Kind)
				}
			}
		})
	}
}

// A header parameter whose identifier is the authorization token and
// whose annotation carries no name resolves to Authorization.
func TestSpringExtractorAuthorizationFallback(t *testing.T) {
	src := `package demo;

@RestController
public class C {

    @GetMapping("/me")
    public String me(@RequestHeader String authorization) {
        return "";
    }
}
`
	for mode, unit := range springUnits(t, src) {
		t.Run(mode, func(t *testing.T) {
			ex := NewSpringExtractor()
			candidates := ex.Locate(unit)
			if len(candidates) != 1 {
				t.Fatalf("located %d candidates, want 1", len(candidates))
			}
			params := ex.ResolveParameters(unit, &candidates[0])
			if len(params) != 1 {
				t.Fatalf("resolved %d parameters, want 1: %+v", len(params), params)
			}
			if params[0].Name != "Authorization" {
				t.Errorf("name = %q, want Authorization", params[0].Name)
			}
			if params[0].Kind != ParamHeader {
				t.Errorf("kind = %q, want header", params[0].Kind)
			}
		})
	}
}

// A header that is not the authorization header keeps its declared
// name untouched.
func TestSpringExtractorHeaderNoFallback(t *testing.T) {
	src := `package demo;

@RestController
public class C {

    @GetMapping("/t")
    public String t(@RequestHeader("X-Trace-Id") String traceId) {
        return "";
    }
}
`
	for mode, unit := range springUnits(t, src) {
		t.Run(mode, func(t *testing.T) {
			ex := NewSpringExtractor()
			candidates := ex.Locate(unit)
			params := ex.ResolveParameters(unit, &candidates[0])
			if len(params) != 1 || params[0].Name != "X-Trace-Id" {
				t.Fatalf("params = %+v, want single X-Trace-Id header", params)
			}
		})
	}
}

func TestSpringExtractorIgnoresNonControllers(t *testing.T) {
	src := `package demo;

public class Plain {
    @GetMapping("/hidden")
    public String hidden() { return ""; }
}
`
	for mode, unit := range springUnits(t, src) {
		t.Run(mode, func(t *testing.T) {
			ex := NewSpringExtractor()
			if candidates := ex.Locate(unit); len(candidates) != 0 {
				t.Fatalf("located %d candidates in a non-controller class, want 0", len(candidates))
			}
		})
	}
}

func TestJoinSpringPaths(t *testing.T) {
	cases := []struct {
		base, p, want string
	}{
		{"", "/users", "/users"},
		{"/", "/users", "/users"},
		{"/api", "/users", "/api/users"},
		{"/api/", "/users", "/api/users"},
		{"/api", "users", "/api/users"},
		{"api", "/users", "/api/users"},
		{"/api", "", "/api"},
		{"/api", "/", "/api"},
		{"", "", "/"},
	}
	for _, tc := range cases {
		if got := joinSpringPaths(tc.base, tc.p); got != tc.want {
			t.Errorf("joinSpringPaths(%q, %q) = %q, want %q", tc.base, tc.p, got, tc.want)
		}
	}
}
