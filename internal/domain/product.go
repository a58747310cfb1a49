package domain

// Product is a catalog entry. The JSON field names follow the snapshot
// format consumed and produced by the bulk import/export endpoints.
type Product struct {
	ID          int64   `json:"product_id"`
	Name        string  `json:"nombre"`
	Price       float64 `json:"precio"`
	Description string  `json:"descripcion"`
	Stock       int     `json:"stock"`
}
