package frame

import "fmt"

// GroupBySum groups rows by keys and sums the value columns.
//
// Rows with a null key are dropped. Null value cells are skipped, so a group
// whose cells are all null sums to 0. A non-null cell that is not a number is
// an error. Groups come out sorted by key.
func GroupBySum(f *Frame, keys, values []string) (*Frame, error) {
	ki := make([]int, len(keys))
	for i, k := range keys {
		j, ok := f.index[k]
		if !ok {
			return nil, fmt.Errorf("group by: unknown key column %q", k)
		}
		ki[i] = j
	}
	vi := make([]int, len(values))
	for i, c := range values {
		j, ok := f.index[c]
		if !ok {
			return nil, fmt.Errorf("group by: unknown value column %q", c)
		}
		vi[i] = j
	}

	type group struct {
		key  []Value
		sums []float64
	}
	var order []*group
	groups := make(map[string]*group)
	for r, row := range f.rows {
		key, ok := joinKey(row, ki)
		if !ok {
			continue
		}
		g, exists := groups[key]
		if !exists {
			g = &group{key: make([]Value, len(ki)), sums: make([]float64, len(vi))}
			for i, j := range ki {
				g.key[i] = row[j]
			}
			groups[key] = g
			order = append(order, g)
		}
		for i, j := range vi {
			v := row[j]
			if !v.Valid {
				continue
			}
			n, ok := Number(v)
			if !ok {
				return nil, fmt.Errorf("group by: row %d column %q: %q is not a number", r, values[i], v.S)
			}
			g.sums[i] += n
		}
	}

	cols := make([]string, 0, len(keys)+len(values))
	cols = append(cols, keys...)
	cols = append(cols, values...)
	out := New(cols...)
	for _, g := range order {
		row := make([]Value, 0, len(cols))
		row = append(row, g.key...)
		for _, s := range g.sums {
			row = append(row, Num(s))
		}
		out.rows = append(out.rows, row)
	}
	out.SortBy(keys...)
	return out, nil
}

// Sum adds the numeric cells of col, skipping nulls.
func (f *Frame) Sum(col string) (float64, error) {
	j, ok := f.index[col]
	if !ok {
		return 0, fmt.Errorf("sum: unknown column %q", col)
	}
	var total float64
	for r, row := range f.rows {
		if !row[j].Valid {
			continue
		}
		n, ok := Number(row[j])
		if !ok {
			return 0, fmt.Errorf("sum: row %d column %q: %q is not a number", r, col, row[j].S)
		}
		total += n
	}
	return total, nil
}
