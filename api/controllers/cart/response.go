package cart

import cartsvc "github.com/angelmondragon/soundstall-backend/internal/cart"

type linesResponse struct {
	Cart []cartsvc.Line `json:"cart"`
}

type countResponse struct {
	CartCount int `json:"cart_count"`
}

func newLinesResponse(lines []cartsvc.Line) linesResponse {
	if lines == nil {
		lines = []cartsvc.Line{}
	}
	return linesResponse{Cart: lines}
}
