package dto

// Límites de página para listados de movimientos.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// PageRequest paginación por limit/offset.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage normaliza la página: límite fuera de rango vuelve al valor por defecto.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 || p.Limit > MaxPageLimit {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse página devuelta. Total se omite cuando no se contó.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable; Message es para personas.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
