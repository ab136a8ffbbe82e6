package pricing_test

import (
	"reflect"
	"testing"

	"github.com/rmacedo/custeio/internal/domain/pricing"
)

func sampleRecords() []pricing.Record {
	return []pricing.Record{
		{Local: "Porto Alegre", ModalidadeVenda: "CIF", UFDestino: "RS", Produto: "Diesel S10", CusteioDerivado: 12.5},
		{Local: "Porto Alegre", ModalidadeVenda: "FOB", UFDestino: "SC", Produto: "Gasolina", CusteioDerivado: 10},
		{Local: "Paulínia", ModalidadeVenda: "CIF", UFDestino: "SP", Produto: "Diesel S500", CusteioDerivado: 8.3},
		{Local: "Itaqui", ModalidadeVenda: "CIF", UFDestino: "MA", Produto: "Gasolina", CusteioDerivado: 9.1},
	}
}

func TestApplyZeroFilterReturnsEverything(t *testing.T) {
	records := sampleRecords()

	got := pricing.Apply(records, pricing.Filter{})

	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
}

func TestApplyTermIsCaseInsensitiveSubstring(t *testing.T) {
	records := sampleRecords()

	cases := []struct {
		name string
		term string
		want int
	}{
		{name: "lowercase local fragment", term: "porto", want: 2},
		{name: "uppercase product fragment", term: "DIESEL", want: 2},
		{name: "uf fragment", term: "sp", want: 1},
		{name: "no match", term: "querosene", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pricing.Apply(records, pricing.Filter{Term: tc.term})

			if len(got) != tc.want {
				t.Fatalf("term %q: expected %d records, got %d", tc.term, tc.want, len(got))
			}
		})
	}
}

func TestApplyCategoricalFiltersAreExact(t *testing.T) {
	records := sampleRecords()

	// exact value matches
	got := pricing.Apply(records, pricing.Filter{Local: "Porto Alegre"})

	if len(got) != 2 {
		t.Fatalf("expected 2 records for exact local, got %d", len(got))
	}

	// a case mismatch is not a match for categoricals
	got = pricing.Apply(records, pricing.Filter{Local: "porto alegre"})

	if len(got) != 0 {
		t.Fatalf("expected 0 records for lowercased local, got %d", len(got))
	}
}

func TestApplyConstraintsComposeWithAND(t *testing.T) {
	records := sampleRecords()

	got := pricing.Apply(records, pricing.Filter{
		Term:    "porto",
		Produto: "Gasolina",
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}

	if got[0].UFDestino != "SC" {
		t.Fatalf("expected the SC row, got %+v", got[0])
	}
}

func TestApplyReturnsSubsetAndIsIdempotent(t *testing.T) {
	records := sampleRecords()
	f := pricing.Filter{Term: "diesel"}

	once := pricing.Apply(records, f)
	twice := pricing.Apply(once, f)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter is not idempotent: %+v vs %+v", once, twice)
	}

	// every filtered row must exist in the input
	for _, r := range once {
		found := false
		for _, in := range records {
			if reflect.DeepEqual(r, in) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("filtered row %+v is not in the input", r)
		}
	}
}

func TestDistinctOptionsSortedAndDeduplicated(t *testing.T) {
	opts := pricing.DistinctOptions(sampleRecords())

	wantLocais := []string{"Itaqui", "Paulínia", "Porto Alegre"}

	if !reflect.DeepEqual(opts.Locais, wantLocais) {
		t.Fatalf("locais: expected %v, got %v", wantLocais, opts.Locais)
	}

	wantProdutos := []string{"Diesel S10", "Diesel S500", "Gasolina"}

	if !reflect.DeepEqual(opts.Produtos, wantProdutos) {
		t.Fatalf("produtos: expected %v, got %v", wantProdutos, opts.Produtos)
	}

	if len(opts.UFs) != 4 {
		t.Fatalf("expected 4 distinct UFs, got %v", opts.UFs)
	}
}

func TestComputeStatsCountsDistinctValues(t *testing.T) {
	stats := pricing.ComputeStats(sampleRecords())

	if stats.Registros != 4 {
		t.Fatalf("registros: expected 4, got %d", stats.Registros)
	}
	if stats.Locais != 3 {
		t.Fatalf("locais: expected 3, got %d", stats.Locais)
	}
	if stats.UFs != 4 {
		t.Fatalf("ufs: expected 4, got %d", stats.UFs)
	}
	if stats.Produtos != 3 {
		t.Fatalf("produtos: expected 3, got %d", stats.Produtos)
	}
}

func TestComputeStatsOnEmptySet(t *testing.T) {
	stats := pricing.ComputeStats(nil)

	if stats != (pricing.Stats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
