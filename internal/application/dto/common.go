package dto

// ErrorResponse corpo de erro HTTP.
// Code é estável e verificável por máquina; Message é legível para humanos.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
