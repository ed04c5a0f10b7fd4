package schemas

import "testing"

func TestCompile(t *testing.T) {
	tests := []struct {
		name       string
		schemaName string
		wantErr    bool
	}{
		{name: "compile config schema", schemaName: Config},
		{name: "compile scan schema", schemaName: Scan},
		{name: "compile non-existent schema", schemaName: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := Compile(tt.schemaName)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if schema == nil {
				t.Error("expected non-nil schema")
			}
		})
	}
}

func TestList(t *testing.T) {
	all, err := List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	for _, name := range []string{Config, Scan} {
		data, ok := all[name]
		if !ok {
			t.Errorf("schema %q not found in List() result", name)
			continue
		}
		if len(data) == 0 {
			t.Errorf("schema %q has empty content", name)
		}
	}
	if len(all) != 2 {
		t.Errorf("List() returned %d schemas, want 2", len(all))
	}
}

func TestGetCompilerSingleton(t *testing.T) {
	c1, err := getCompiler()
	if err != nil {
		t.Fatalf("getCompiler() error: %v", err)
	}
	c2, err := getCompiler()
	if err != nil {
		t.Fatalf("getCompiler() second call error: %v", err)
	}
	if c1 != c2 {
		t.Error("getCompiler() should return the same instance")
	}
}
