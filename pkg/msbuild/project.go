package msbuild

import (
	"encoding/xml"
	"maps"
	"regexp"
	"strings"
)

type xmlProject struct {
	Sdk            string             `xml:"Sdk,attr"`
	SdkElements    []xmlSdk           `xml:"Sdk"`
	Imports        []xmlSdk           `xml:"Import"`
	PropertyGroups []xmlPropertyGroup `xml:"PropertyGroup"`
	ItemGroups     []xmlItemGroup     `xml:"ItemGroup"`
}

type xmlSdk struct {
	Name string `xml:"Name,attr"`
	Sdk  string `xml:"Sdk,attr"`
}

type xmlPropertyGroup struct {
	Condition  string       `xml:"Condition,attr"`
	Properties []xmlElement `xml:",any"`
}

type xmlElement struct {
	XMLName   xml.Name
	Condition string `xml:"Condition,attr"`
	Value     string `xml:",chardata"`
}

type xmlItemGroup struct {
	Condition string    `xml:"Condition,attr"`
	Items     []xmlItem `xml:",any"`
}

type xmlItem struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Metadata []xmlElement `xml:",any"`
}

// isSDK reports whether the project uses an MSBuild SDK, through the
// Sdk attribute, an <Sdk> element or an SDK import.
func (p *xmlProject) isSDK() bool {
	if strings.TrimSpace(p.Sdk) != "" {
		return true
	}
	for _, s := range p.SdkElements {
		if s.Name != "" {
			return true
		}
	}
	for _, imp := range p.Imports {
		if imp.Sdk != "" {
			return true
		}
	}
	return false
}

// properties are keyed by lower-cased name; MSBuild names are
// case-insensitive.
type properties map[string]string

func (p properties) get(name string) string { return p[strings.ToLower(name)] }

var propertyRef = regexp.MustCompile(`\$\(([A-Za-z_][A-Za-z0-9_.\-]*)\)`)

// expand substitutes $(Name) references. Undefined properties expand to the
// empty string; property functions are left as written.
func (p properties) expand(s string) string {
	if !strings.Contains(s, "$(") {
		return s
	}
	return propertyRef.ReplaceAllStringFunc(s, func(m string) string {
		return p.get(m[2 : len(m)-1])
	})
}

var (
	orSplit  = regexp.MustCompile(`(?i)\s+or\s+`)
	andSplit = regexp.MustCompile(`(?i)\s+and\s+`)
)

// condition evaluates the subset of MSBuild conditions projects commonly
// use: quoted == and != comparisons joined by and/or. Anything else is
// treated as true.
func (p properties) condition(cond string) bool {
	c := strings.TrimSpace(p.expand(cond))
	if c == "" {
		return true
	}
	for _, alt := range orSplit.Split(trimParens(c), -1) {
		all := true
		for _, term := range andSplit.Split(trimParens(alt), -1) {
			if !compare(trimParens(term)) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func compare(term string) bool {
	if l, r, ok := strings.Cut(term, "!="); ok {
		return !strings.EqualFold(unquote(l), unquote(r))
	}
	if l, r, ok := strings.Cut(term, "=="); ok {
		return strings.EqualFold(unquote(l), unquote(r))
	}
	return true
}

func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "'"))
}

func trimParens(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

type evaluation struct {
	props properties
	items map[string][]Item
}

// evaluate runs the property pass and then the item pass. Global
// properties cannot be overridden by the project.
func (p *xmlProject) evaluate(initial properties, globals map[string]string) evaluation {
	props := maps.Clone(initial)
	maps.Copy(props, globals)

	for _, pg := range p.PropertyGroups {
		if !props.condition(pg.Condition) {
			continue
		}
		for _, el := range pg.Properties {
			key := strings.ToLower(el.XMLName.Local)
			if _, global := globals[key]; global {
				continue
			}
			if !props.condition(el.Condition) {
				continue
			}
			props[key] = strings.TrimSpace(props.expand(el.Value))
		}
	}

	items := make(map[string][]Item)
	for _, ig := range p.ItemGroups {
		if !props.condition(ig.Condition) {
			continue
		}
		for _, xi := range ig.Items {
			applyItem(items, props, xi)
		}
	}
	return evaluation{props: props, items: items}
}

func applyItem(items map[string][]Item, props properties, xi xmlItem) {
	kind := xi.XMLName.Local
	var include, update, remove, cond string
	meta := make(map[string]string)
	for _, a := range xi.Attrs {
		switch a.Name.Local {
		case "Include":
			include = a.Value
		case "Update":
			update = a.Value
		case "Remove":
			remove = a.Value
		case "Condition":
			cond = a.Value
		default:
			meta[a.Name.Local] = props.expand(a.Value)
		}
	}
	if !props.condition(cond) {
		return
	}
	for _, m := range xi.Metadata {
		if props.condition(m.Condition) {
			meta[m.XMLName.Local] = strings.TrimSpace(props.expand(m.Value))
		}
	}

	switch {
	case include != "":
		for _, spec := range splitItemSpec(props.expand(include)) {
			items[kind] = append(items[kind], Item{Include: spec, Metadata: maps.Clone(meta)})
		}
	case update != "":
		for _, spec := range splitItemSpec(props.expand(update)) {
			for i := range items[kind] {
				if strings.EqualFold(items[kind][i].Include, spec) {
					maps.Copy(items[kind][i].Metadata, meta)
				}
			}
		}
	case remove != "":
		for _, spec := range splitItemSpec(props.expand(remove)) {
			kept := items[kind][:0]
			for _, it := range items[kind] {
				if !strings.EqualFold(it.Include, spec) {
					kept = append(kept, it)
				}
			}
			items[kind] = kept
		}
	}
}

func splitItemSpec(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
