package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// walkNodes visits every node of the given type in depth-first order.
func walkNodes(node *sitter.Node, nodeType string, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	if node.Type() == nodeType {
		fn(node)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			walkNodes(child, nodeType, fn)
		}
	}
}

// annotation is a parsed Java annotation: its simple name, the
// positional string argument if any, and its named attribute pairs as
// raw source text.
type annotation struct {
	name       string
	positional string
	pairs      map[string]string
}

// pathValue returns the annotation's path: the value or path attribute
// when named, else the positional string argument.
func (a annotation) pathValue() string {
	if v, ok := a.pairs["value"]; ok {
		return firstStringLiteral(v)
	}
	if v, ok := a.pairs["path"]; ok {
		return firstStringLiteral(v)
	}
	return a.positional
}

// nameValue returns the annotation's explicit external name: the value
// or name attribute when named, else the positional string argument.
func (a annotation) nameValue() string {
	if v, ok := a.pairs["value"]; ok {
		return firstStringLiteral(v)
	}
	if v, ok := a.pairs["name"]; ok {
		return firstStringLiteral(v)
	}
	return a.positional
}

// annotationsOf collects the annotations attached to a declaration
// node, looking both at direct children and inside a modifiers child.
func annotationsOf(node *sitter.Node, content []byte) []annotation {
	var anns []annotation
	collect := func(n *sitter.Node) {
		if n.Type() != "annotation" && n.Type() != "marker_annotation" {
			return
		}
		a := annotation{pairs: map[string]string{}}
		if name := n.ChildByFieldName("name"); name != nil {
			a.name = name.Content(content)
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.ChildCount()); i++ {
				arg := args.Child(i)
				if arg == nil {
					continue
				}
				switch arg.Type() {
				case "element_value_pair":
					key := arg.ChildByFieldName("key")
					value := arg.ChildByFieldName("value")
					if key != nil && value != nil {
						a.pairs[key.Content(content)] = value.Content(content)
					}
				case "string_literal":
					a.positional = cleanStringLiteral(arg.Content(content))
				}
			}
		}
		anns = append(anns, a)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "modifiers" {
			for j := 0; j < int(child.ChildCount()); j++ {
				if mod := child.Child(j); mod != nil {
					collect(mod)
				}
			}
			continue
		}
		collect(child)
	}
	return anns
}

// firstStringLiteral extracts the first quoted literal from raw
// attribute source text, which may be a single literal or an array
// initializer like {"/a", "/b"}.
func firstStringLiteral(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "{}")
	raw = strings.TrimSpace(strings.Split(raw, ",")[0])
	if lit := cleanStringLiteral(raw); lit != "" {
		return lit
	}
	return raw
}
