package request

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const StatusPending = "pending"

// Request is a pending sign-up submission awaiting admin action. It is
// consumed exactly once: approval promotes it into a user, rejection
// deletes it. There is no retained "rejected" state.
type Request struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	CPF       string    `json:"cpf"`
	Endereco  string    `json:"endereco"`
	Cidade    string    `json:"cidade"`
	Estado    string    `json:"estado"`
	CEP       string    `json:"cep"`
	Telefone  string    `json:"telefone"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // requested password, held until approval
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("request not found")

type CreateRequest struct {
	Nome     string `json:"nome" binding:"required"`
	CPF      string `json:"cpf" binding:"required"`
	Endereco string `json:"endereco" binding:"required"`
	Cidade   string `json:"cidade" binding:"required"`
	Estado   string `json:"estado" binding:"required,len=2"`
	CEP      string `json:"cep" binding:"required"`
	Telefone string `json:"telefone" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// A factory to build a Request from the incoming DTO

func NewFromCreateRequest(req CreateRequest) Request {
	return Request{
		ID:        uuid.NewString(),
		Nome:      req.Nome,
		CPF:       req.CPF,
		Endereco:  req.Endereco,
		Cidade:    req.Cidade,
		Estado:    req.Estado,
		CEP:       req.CEP,
		Telefone:  req.Telefone,
		Email:     req.Email,
		Password:  req.Password,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}
