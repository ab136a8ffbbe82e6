package pricing

import (
	"sort"
	"strings"
)

// Filter holds the four dashboard inputs. Zero values mean "no constraint".
type Filter struct {
	Term    string
	Local   string
	UF      string
	Produto string
}

func (f Filter) IsZero() bool {
	return f.Term == "" && f.Local == "" && f.UF == "" && f.Produto == ""
}

// Apply returns the subset of records matching the filter. The free-text
// term matches case-insensitively as a substring of Local, UF Destino or
// Produto; the categorical filters are exact, case-sensitive equality.
// All constraints compose with AND. The result is always a subset of the
// input and the function is idempotent for fixed inputs.
func Apply(records []Record, f Filter) []Record {
	out := make([]Record, 0, len(records))

	term := strings.ToLower(f.Term)

	for _, r := range records {
		if term != "" && !matchesTerm(r, term) {
			continue
		}
		if f.Local != "" && r.Local != f.Local {
			continue
		}
		if f.UF != "" && r.UFDestino != f.UF {
			continue
		}
		if f.Produto != "" && r.Produto != f.Produto {
			continue
		}
		out = append(out, r)
	}

	return out
}

func matchesTerm(r Record, lowered string) bool {
	// An empty field simply does not match; it is not an error.
	if r.Local != "" && strings.Contains(strings.ToLower(r.Local), lowered) {
		return true
	}
	if r.UFDestino != "" && strings.Contains(strings.ToLower(r.UFDestino), lowered) {
		return true
	}
	if r.Produto != "" && strings.Contains(strings.ToLower(r.Produto), lowered) {
		return true
	}
	return false
}

// Options are the distinct-value lists that populate the three filter
// dropdowns. They are derived from the unfiltered dataset.
type Options struct {
	Locais   []string `json:"locais"`
	UFs      []string `json:"ufs"`
	Produtos []string `json:"produtos"`
}

func DistinctOptions(records []Record) Options {
	return Options{
		Locais:   distinct(records, func(r Record) string { return r.Local }),
		UFs:      distinct(records, func(r Record) string { return r.UFDestino }),
		Produtos: distinct(records, func(r Record) string { return r.Produto }),
	}
}

func distinct(records []Record, key func(Record) string) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))

	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	sort.Strings(out)
	return out
}

// Stats are the dashboard statistic cards, computed over the filtered view.
type Stats struct {
	Registros int `json:"registros"`
	Locais    int `json:"locais"`
	UFs       int `json:"ufs"`
	Produtos  int `json:"produtos"`
}

func ComputeStats(records []Record) Stats {
	locais := make(map[string]struct{})
	ufs := make(map[string]struct{})
	produtos := make(map[string]struct{})

	for _, r := range records {
		locais[r.Local] = struct{}{}
		ufs[r.UFDestino] = struct{}{}
		produtos[r.Produto] = struct{}{}
	}

	return Stats{
		Registros: len(records),
		Locais:    len(locais),
		UFs:       len(ufs),
		Produtos:  len(produtos),
	}
}
