package entity

// Work is one row of the catalog. Field names mirror the CSV columns,
// which are the contract with the hand-edited catalogo.csv file.
// ID stays a string so malformed ids in the source file round-trip
// unchanged; numeric interpretation happens only when assigning new ids.
type Work struct {
	ID         string `json:"id"`
	Titulo     string `json:"titulo"`
	Autor      string `json:"autor"`
	Genero     string `json:"genero"`
	Descricao  string `json:"descricao"`
	GrauMinimo string `json:"grau_minimo"`
	Arquivo    string `json:"arquivo"`
	Capa       string `json:"capa"`
}
