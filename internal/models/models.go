package models

type User struct {
	ID       string
	Email    string
	PassHash []byte
}

type Message struct {
	Email   string `json:"to"`
	Purpose string `json:"purpose"`
}
