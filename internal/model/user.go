package model

// UserType distinguishes individuals (PF) from companies (PJ).
type UserType string

// User types.
const (
	UserTypeIndividual UserType = "PF"
	UserTypeCompany    UserType = "PJ"
)

// Individual holds personal data for PF users.
type Individual struct {
	Name      string `json:"nome"`
	CPF       string `json:"cpf"`
	BirthDate string `json:"dataNasc,omitempty"`
}

// Company holds company data for PJ users.
type Company struct {
	CNPJ      string `json:"cnpj"`
	LegalName string `json:"razaoSocial"`
}

// User is the authenticated account profile.
type User struct {
	Individual *Individual `json:"pessoaFisica,omitempty"`
	Company    *Company    `json:"pessoaJuridica,omitempty"`
	Email      string      `json:"email"`
	Type       UserType    `json:"tipoUsuario"`
	CreatedAt  string      `json:"criadoEm"`
	ID         int         `json:"idUsuario"`
}

// DisplayName returns the person's name, the company name, or the email.
func (u User) DisplayName() string {
	if u.Individual != nil && u.Individual.Name != "" {
		return u.Individual.Name
	}
	if u.Company != nil && u.Company.LegalName != "" {
		return u.Company.LegalName
	}
	return u.Email
}
