package motorista

import (
	"time"
)

// Status of a driver account.
type Status string

const (
	StatusAguardandoDocumentos Status = "aguardando_documentos"
	StatusDocumentosAnalise    Status = "documentos_em_analise"
	StatusAprovado             Status = "aprovado"
	StatusRejeitado            Status = "documentos_rejeitados"
	StatusAguardandoExclusao   Status = "aguardando_exclusao"
	StatusAtivo                Status = "ativo"
	StatusEncerrado            Status = "encerrado"
)

// Document types and statuses.
const (
	DocumentoCNH    = "CNH"
	DocumentoCRLV   = "CRLV"
	DocumentoSelfie = "selfie_cnh"

	DocumentoStatusPendente = "pendente"
	DocumentoStatusAprovado = "aprovado"
)

// DocumentosObrigatorios are the documents required before review.
var DocumentosObrigatorios = []string{DocumentoCNH, DocumentoCRLV, DocumentoSelfie}

// CategoriasCNH are the accepted driver license categories.
var CategoriasCNH = []string{"A", "B", "C", "D", "E", "AB", "AC", "AD", "AE"}

// Motorista is the driver profile as returned by the API.
type Motorista struct {
	ID            string      `json:"id" yaml:"id"`
	Nome          string      `json:"nome" yaml:"nome"`
	Email         string      `json:"email" yaml:"email"`
	Telefone      string      `json:"telefone,omitempty" yaml:"telefone,omitempty"`
	CPF           string      `json:"cpf,omitempty" yaml:"cpf,omitempty"`
	CNH           string      `json:"cnh,omitempty" yaml:"cnh,omitempty"`
	CategoriaCNH  string      `json:"categoria_cnh,omitempty" yaml:"categoria_cnh,omitempty"`
	ValidadeCNH   *time.Time  `json:"validade_cnh,omitempty" yaml:"validade_cnh,omitempty"`
	Status        Status      `json:"status,omitempty" yaml:"status,omitempty"`
	ModeloVeiculo string      `json:"modelo_veiculo,omitempty" yaml:"modelo_veiculo,omitempty"`
	PlacaVeiculo  string      `json:"placa_veiculo,omitempty" yaml:"placa_veiculo,omitempty"`
	FotoPerfilURL string      `json:"foto_perfil_url,omitempty" yaml:"foto_perfil_url,omitempty"`
	CriadoEm      *time.Time  `json:"criado_em,omitempty" yaml:"criado_em,omitempty"`
	Documentos    []Documento `json:"documentos,omitempty" yaml:"documentos,omitempty"`
}

// Documento is an uploaded document.
type Documento struct {
	ID             string     `json:"id" yaml:"id"`
	TipoDocumento  string     `json:"tipo_documento" yaml:"tipo_documento"`
	CaminhoArquivo string     `json:"caminho_arquivo" yaml:"caminho_arquivo"`
	Formato        string     `json:"formato" yaml:"formato"`
	Tamanho        int64      `json:"tamanho" yaml:"tamanho"`
	Status         string     `json:"status" yaml:"status"`
	CriadoEm       *time.Time `json:"criado_em,omitempty" yaml:"criado_em,omitempty"`
}

// Summary is the short profile returned by register and login.
type Summary struct {
	ID     string `json:"id" yaml:"id"`
	Nome   string `json:"nome" yaml:"nome"`
	Email  string `json:"email" yaml:"email"`
	Status Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// MissingDocuments returns the required document types not yet uploaded.
func (m *Motorista) MissingDocuments() []string {
	have := make(map[string]bool, len(m.Documentos))
	for _, d := range m.Documentos {
		have[d.TipoDocumento] = true
	}

	list := make([]string, 0)
	for _, t := range DocumentosObrigatorios {
		if !have[t] {
			list = append(list, t)
		}
	}
	return list
}

// RegisterRequest is the sign up form.
type RegisterRequest struct {
	Nome             string `json:"nome" yaml:"nome"`
	DataNascimento   string `json:"data_nascimento" yaml:"data_nascimento"`
	CPF              string `json:"cpf" yaml:"cpf"`
	CNH              string `json:"cnh" yaml:"cnh"`
	CategoriaCNH     string `json:"categoria_cnh" yaml:"categoria_cnh"`
	ValidadeCNH      string `json:"validade_cnh" yaml:"validade_cnh"`
	PlacaVeiculo     string `json:"placa_veiculo" yaml:"placa_veiculo"`
	ModeloVeiculo    string `json:"modelo_veiculo" yaml:"modelo_veiculo"`
	Telefone         string `json:"telefone" yaml:"telefone"`
	Email            string `json:"email" yaml:"email"`
	Senha            string `json:"senha" yaml:"-"`
	ConfirmacaoSenha string `json:"confirmacao_senha" yaml:"-"`
}

// Sanitize strips masks so the backend always receives clean values.
func (r *RegisterRequest) Sanitize() {
	r.Nome = SanitizeNome(r.Nome)
	r.CPF = SanitizeCPF(r.CPF)
	r.Telefone = SanitizeTelefone(r.Telefone)
	r.PlacaVeiculo = SanitizePlaca(r.PlacaVeiculo)
	r.CNH = SanitizeCNH(r.CNH)
	r.Email = SanitizeEmail(r.Email)
	r.CategoriaCNH = SanitizeCategoria(r.CategoriaCNH)
}

// UpdateProfileRequest carries the editable contact fields.
type UpdateProfileRequest struct {
	Telefone string `json:"telefone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ChangePasswordRequest carries the password change form.
type ChangePasswordRequest struct {
	SenhaAtual  string `json:"senhaAtual"`
	NovaSenha   string `json:"novaSenha"`
	Confirmacao string `json:"confirmacao"`
}

// DocumentFile is a local file to be uploaded as the given document type.
type DocumentFile struct {
	Tipo string
	Path string
}
