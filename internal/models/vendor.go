package models

import "time"

// Vendor represents a vendor row in the database
type Vendor struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type VendorCreate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SendRFPBody is the body of POST /vendors/send-rfp
type SendRFPBody struct {
	VendorIDs []int `json:"vendor_ids"`
	RFPID     int   `json:"rfp_id"`
}
