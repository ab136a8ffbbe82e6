package pricing

// Record is one row of the pricing table. Field names mirror the spreadsheet
// columns they are loaded from so the JSON payload matches what the
// dashboard table renders.
type Record struct {
	Local           string  `json:"LOCAL"`
	ModalidadeVenda string  `json:"MODALIDADE_VENDA"`
	UFDestino       string  `json:"UF_Destino"`
	Produto         string  `json:"Produto"`
	CusteioDerivado float64 `json:"Custeio_Derivado"`
	CusteioBiocomb  float64 `json:"Custeio_Biocomb"`
	FOBZero         float64 `json:"FOB_Zero"`
}

// Dataset is the single shared document: the whole pricing table plus the
// update metadata shown in the dashboard header. Every upload replaces it
// wholesale; there is no per-record identity or diffing.
type Dataset struct {
	Records    []Record `json:"registros"`
	LastUpdate string   `json:"lastUpdate"`
	UpdatedBy  string   `json:"updatedBy"`
}
