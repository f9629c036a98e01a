package repository

import "strings"

type filterTerm struct {
	column string
	value  string
}

// filterClause builds " WHERE a = ? AND b = ?" from the non-blank terms.
// Column names come from this package only, never from input.
func filterClause(terms ...filterTerm) (string, []any) {
	var conds []string
	var args []any
	for _, t := range terms {
		v := strings.TrimSpace(t.value)
		if v == "" {
			continue
		}
		conds = append(conds, t.column+" = ?")
		args = append(args, v)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
