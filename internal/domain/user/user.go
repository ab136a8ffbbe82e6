package user

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Nome         string    `json:"nome"`
	CPF          string    `json:"cpf"`
	Endereco     string    `json:"endereco"`
	Cidade       string    `json:"cidade"`
	Estado       string    `json:"estado"`
	CEP          string    `json:"cep"`
	Telefone     string    `json:"telefone"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
