package caseflow

import (
	"fmt"
	"strings"
	"unicode"
)

// RenderMermaid renders g as a left-to-right Mermaid flowchart.
// Branch edges are drawn dotted.
func RenderMermaid(g *Graph, caseName string) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR")

	for _, n := range g.Nodes {
		label := n.Label
		if n.Kind == KindSetup {
			label = caseName
		}
		sb.WriteString("\n\t")
		sb.WriteString(formatNode(n, label))
	}

	for _, e := range g.Edges {
		arrow := "-->"
		if e.Branch {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("\n\t%s %s %s", sanitize(e.Source), arrow, sanitize(e.Target)))
	}
	return sb.String()
}

func formatNode(n Node, label string) string {
	id := sanitize(n.ID)
	label = strings.ReplaceAll(label, `"`, "'")
	switch n.Kind {
	case KindSetup:
		return fmt.Sprintf(`%s(["%s"])`, id, label)
	case KindAction:
		return fmt.Sprintf(`%s["%s"]`, id, label)
	default:
		panic(fmt.Sprintf("caseflow: unhandled node kind %q", n.Kind))
	}
}

// sanitize replaces characters Mermaid does not accept in identifiers.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return '_'
	}, id)
}
