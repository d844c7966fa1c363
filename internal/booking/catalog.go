package booking

import (
	"fmt"
	"strings"
)

// Service is one offering of the salon.
type Service struct {
	// Name is the customer-facing label.
	Name string
	// Key is the lowercase phrase matched against free text.
	Key string
}

// Catalog lists the services offered, in menu order.
var Catalog = []Service{
	{Name: "Classic Manicure", Key: "classic manicure"},
	{Name: "Deluxe Pedicure", Key: "deluxe pedicure"},
	{Name: "Facial Treatment", Key: "facial treatment"},
	{Name: "Haircut and Styling", Key: "haircut and styling"},
	{Name: "Hair Coloring", Key: "hair coloring"},
	{Name: "Waxing (Full Body)", Key: "waxing"},
	{Name: "Eyelash Extensions", Key: "eyelash extensions"},
	{Name: "Microdermabrasion", Key: "microdermabrasion"},
	{Name: "Chemical Peel", Key: "chemical peel"},
	{Name: "Massage Therapy (1 hour)", Key: "massage therapy"},
	{Name: "Bridal Makeup", Key: "bridal makeup"},
	{Name: "Hair Spa Treatment", Key: "hair spa treatment"},
}

// ExampleServices is the short hint used when re-asking for a service.
const ExampleServices = "Classic Manicure, Deluxe Pedicure, Facial Treatment, etc."

// MatchService returns the first catalog entry whose key appears in text.
func MatchService(text string) (Service, bool) {
	lower := strings.ToLower(text)
	for _, svc := range Catalog {
		if strings.Contains(lower, svc.Key) {
			return svc, true
		}
	}
	return Service{}, false
}

// NumberedCatalog renders the catalog as "1. Classic Manicure" lines.
func NumberedCatalog() string {
	lines := make([]string, len(Catalog))
	for i, svc := range Catalog {
		lines[i] = fmt.Sprintf("%d. %s", i+1, svc.Name)
	}
	return strings.Join(lines, "\n")
}
