package utils

type InvalidAddressError struct{}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (e InvalidAddressError) Error() string {
	return "invalid IPv4 address"
}
