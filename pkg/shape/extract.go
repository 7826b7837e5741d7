package shape

// fromTables resolves every comma-separated entry of a FROM region.
func fromTables(r ClauseRegion) []string {
	var labels []string
	for _, entry := range splitTopLevel(r.Nodes) {
		if ref, ok := Resolve(entry); ok {
			labels = append(labels, ref.Label)
		}
	}
	return labels
}

// joinTable resolves the joined table of a JOIN region, ignoring its ON or
// USING sub-clause. Entries after a top-level comma, as in
// "JOIN b ON a.id = b.id, c", belong to the comma-joined FROM list and are
// returned in from.
func joinTable(r ClauseRegion) (label string, ok bool, from []string) {
	parts := splitTopLevel(r.Nodes)
	if len(parts) == 0 {
		return "", false, nil
	}
	span := parts[0]
	for i, n := range span {
		if n.IsKeyword("ON", "USING") {
			span = span[:i]
			break
		}
	}
	for _, entry := range parts[1:] {
		if ref, ok := Resolve(entry); ok {
			from = append(from, ref.Label)
		}
	}
	ref, ok := Resolve(span)
	return ref.Label, ok, from
}

// groupByColumns returns each comma-separated GROUP BY item.
func groupByColumns(r ClauseRegion) []string {
	var items []string
	for _, part := range splitTopLevel(r.Nodes) {
		if text := plainText(part); text != "" {
			items = append(items, text)
		}
	}
	return items
}

// orderByColumns returns each ORDER BY column followed, as a separate item,
// by its direction keyword when one is present. Anything after the
// direction, such as NULLS LAST, becomes one more item.
func orderByColumns(r ClauseRegion) []string {
	var items []string
	for _, part := range splitTopLevel(r.Nodes) {
		dir := -1
		for i := len(part) - 1; i >= 0; i-- {
			if part[i].Group == nil && part[i].Token.IsDirection() {
				dir = i
				break
			}
		}
		if dir < 0 {
			items = appendNonEmpty(items, plainText(part))
			continue
		}
		items = appendNonEmpty(items, plainText(part[:dir]))
		items = append(items, part[dir].Token.Upper())
		items = appendNonEmpty(items, plainText(part[dir+1:]))
	}
	return items
}

func appendNonEmpty(items []string, s string) []string {
	if s == "" {
		return items
	}
	return append(items, s)
}
