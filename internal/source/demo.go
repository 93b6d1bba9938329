package source

import (
	"fmt"
	"strconv"

	"github.com/zoobzio/qrcard"
)

// Address is a postal address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// User is a demo directory entry. The credential fields are populated on
// purpose so the sanitizer has something to remove.
type User struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    Address `json:"address"`
	Company    string  `json:"company"`
	Position   string  `json:"position"`
	Department string  `json:"department"`
	StartDate  string  `json:"startDate"`
	IsActive   bool    `json:"isActive"`
	Password   string  `json:"password,omitempty"`
	Token      string  `json:"token,omitempty"`
	APIKey     string  `json:"apiKey,omitempty"`
	Secret     string  `json:"secret,omitempty"`
	CVV        string  `json:"cvv,omitempty"`
	CardNumber string  `json:"cardNumber,omitempty"`
}

// DemoUsers returns the built-in demo users.
func DemoUsers() []User {
	return []User{
		{
			ID:    1,
			Name:  "Abhaya Bikram Shahi",
			Email: "abhayabikramshahiofficial@gmail.com",
			Phone: "+977-9808370638",
			Address: Address{
				Street:  "102 Kathmandu Road",
				City:    "Kalikot",
				State:   "Karnali",
				Zip:     "21300",
				Country: "Nepal",
			},
			Company:    "Nepal Tech Pvt Ltd",
			Position:   "Software Engineer",
			Department: "Engineering",
			StartDate:  "2022-04-15",
			IsActive:   true,
			Password:   "gopalsecret123",
			Token:      "nepal123xyz",
			APIKey:     "nepal-api-key",
		},
		{
			ID:    2,
			Name:  "Sita Sharma",
			Email: "sita.sharma@example.com",
			Phone: "+977-9809876543",
			Address: Address{
				Street:  "56 Pokhara Lane",
				City:    "Pokhara",
				State:   "Gandaki",
				Zip:     "33700",
				Country: "Nepal",
			},
			Company:    "Gandaki Products",
			Position:   "Product Manager",
			Department: "Product",
			StartDate:  "2021-08-20",
			IsActive:   true,
			Password:   "sitasecret456",
			Secret:     "confidential-info",
		},
		{
			ID:    3,
			Name:  "Baburam Pun",
			Email: "baburam.pun@example.com",
			Phone: "+977-9845551234",
			Address: Address{
				Street:  "789 Bharatpur Road",
				City:    "Bharatpur",
				State:   "Bagmati",
				Zip:     "44100",
				Country: "Nepal",
			},
			Company:    "Chitwan Design Studio",
			Position:   "Designer",
			Department: "Design",
			StartDate:  "2023-06-10",
			IsActive:   true,
			CVV:        "123",
			CardNumber: "4111-1111-1111-1111",
		},
	}
}

// NewDemoSource returns a MemorySource holding DemoUsers keyed by ID.
func NewDemoSource(opts ...Option) (*MemorySource, error) {
	users := DemoUsers()
	records := make(map[string]*qrcard.Record, len(users))
	for _, u := range users {
		r, err := qrcard.FromStruct(u)
		if err != nil {
			return nil, fmt.Errorf("demo user %d: %w", u.ID, err)
		}
		records[strconv.Itoa(u.ID)] = r
	}
	return NewMemorySource(records, opts...), nil
}
