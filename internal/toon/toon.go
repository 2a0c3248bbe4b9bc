// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// summaries and raw fact models.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/cppfacts/internal/graph"
	"github.com/phobologic/cppfacts/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a summary into TOON format.
func Encode(s *graph.Summary) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("repo: %s", encodeValue(s.RepoName)))
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(s.Root)))

	var fileRows [][]string
	for i := range s.Files {
		fi := &s.Files[i]
		fileRows = append(fileRows, []string{
			fi.Path,
			strconv.Itoa(fi.Types),
			strconv.Itoa(fi.Behaviourals),
			strconv.Itoa(fi.Variables),
			fmt.Sprintf("%.4f", fi.Rank),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "types", "behaviourals", "variables", "rank"}, fileRows))

	var symbolRows [][]string
	for i := range s.Symbols {
		sym := &s.Symbols[i]
		symbolRows = append(symbolRows, []string{
			sym.ID,
			sym.File,
			sym.Name,
			sym.Kind.String(),
			strconv.Itoa(sym.Line),
			strconv.Itoa(sym.Complexity),
			strconv.Itoa(sym.Statements),
		})
	}
	parts = append(parts, formatTabular("symbols", []string{"id", "file", "name", "kind", "line", "complexity", "statements"}, symbolRows))

	var depRows [][]string
	for i := range s.Dependencies {
		d := &s.Dependencies[i]
		depRows = append(depRows, []string{
			d.Source,
			d.Target,
			strings.Join(d.Symbols, " "),
		})
	}
	parts = append(parts, formatTabular("dependencies", []string{"source", "target", "symbols"}, depRows))

	var callRows [][]string
	for i := range s.CallEdges {
		ce := &s.CallEdges[i]
		callRows = append(callRows, []string{ce.Caller, ce.Callee})
	}
	parts = append(parts, formatTabular("calls", []string{"caller", "callee"}, callRows))

	if len(s.CallSites) > 0 {
		var siteRows [][]string
		for i := range s.CallSites {
			cs := &s.CallSites[i]
			siteRows = append(siteRows, []string{
				cs.Caller,
				cs.Callee,
				cs.File,
				strconv.Itoa(cs.Line),
			})
		}
		parts = append(parts, formatTabular("callsites", []string{"caller", "callee", "file", "line"}, siteRows))
	}

	return strings.Join(parts, "\n")
}

// EncodeModel dumps every entity and association of m, in creation order.
// Handles print as integers, -1 standing for none.
func EncodeModel(m *model.Model) string {
	var entityRows [][]string
	for _, e := range m.Entities() {
		file, line := anchor(e.Anchor)
		entityRows = append(entityRows, []string{
			strconv.Itoa(int(e.ID)),
			e.Kind.String(),
			m.FullName(e.ID),
			strconv.Itoa(int(e.Owner)),
			strconv.FormatBool(e.Stub),
			file,
			line,
		})
	}

	var assocRows [][]string
	for _, a := range m.Associations() {
		file, line := anchor(a.Anchor)
		args := make([]string, len(a.Arguments))
		for i, id := range a.Arguments {
			args[i] = strconv.Itoa(int(id))
		}
		assocRows = append(assocRows, []string{
			strconv.Itoa(int(a.ID)),
			a.Kind.String(),
			strconv.Itoa(int(a.From)),
			strconv.Itoa(int(a.To)),
			strconv.FormatBool(a.IsWrite),
			a.Signature,
			strings.Join(args, " "),
			strconv.Itoa(int(a.Previous)),
			file,
			line,
		})
	}

	return formatTabular("entities", []string{"id", "kind", "name", "owner", "stub", "file", "line"}, entityRows) +
		"\n" +
		formatTabular("associations", []string{"id", "kind", "from", "to", "write", "signature", "arguments", "previous", "file", "line"}, assocRows)
}

func anchor(a *model.Anchor) (file, line string) {
	if a == nil {
		return "", ""
	}
	return a.File, strconv.Itoa(a.Line)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
