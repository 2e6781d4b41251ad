package motorista

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
)

const (
	minPasswordLen = 8
	minAge         = 18

	// MaxUploadSize is the largest document or photo the backend accepts.
	MaxUploadSize int64 = 5 * 1024 * 1024

	// MaxUploadFiles is the most documents accepted in one upload.
	MaxUploadFiles = 3
)

var (
	ErrRequired           = errors.New("campo obrigatório ausente")
	ErrEmailInvalido      = errors.New("formato de email inválido")
	ErrSenhaCurta         = errors.New("senha deve ter pelo menos 8 caracteres")
	ErrSenhasNaoConferem  = errors.New("senhas não conferem")
	ErrCPFInvalido        = errors.New("CPF inválido")
	ErrCNHInvalida        = errors.New("CNH deve ter 11 dígitos")
	ErrCategoriaInvalida  = errors.New("categoria de CNH inválida")
	ErrPlacaInvalida      = errors.New("formato de placa inválido")
	ErrTelefoneInvalido   = errors.New("formato de telefone inválido")
	ErrDataInvalida       = errors.New("formato de data inválido, use DD/MM/AAAA")
	ErrMenorIdade         = errors.New("motorista deve ter pelo menos 18 anos")
	ErrCNHVencida         = errors.New("CNH vencida")
	ErrDocumentoFormato   = errors.New("formato não suportado, use JPG, PNG ou PDF")
	ErrFotoFormato        = errors.New("formato de foto não suportado, use JPG, JPEG, PNG ou WEBP")
	ErrArquivoMuitoGrande = errors.New("arquivo muito grande, tamanho máximo: 5MB")
	ErrDocumentoTipo      = errors.New("tipo de documento inválido")
	ErrDocumentoDuplicado = errors.New("tipo de documento duplicado na mesma requisição")
	ErrNenhumDocumento    = errors.New("nenhum documento enviado")
	ErrLimiteArquivos     = errors.New("limite de arquivos excedido")
)

var (
	emailRegex       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	elevenDigitRegex = regexp.MustCompile(`^\d{11}$`)
	placaAntigaRegex = regexp.MustCompile(`^[A-Z]{3}\d{4}$`)
	placaMercosul    = regexp.MustCompile(`^[A-Z]{3}\d[A-Z]\d{2}$`)
	telefoneRegex    = regexp.MustCompile(`^[1-9]{2}(9\d{8}|\d{8})$`)

	documentFormats = []string{"JPG", "JPEG", "PNG", "PDF"}
	photoFormats    = []string{"JPG", "JPEG", "PNG", "WEBP"}
)

// FieldError ties a validation failure to the form field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// Validate checks the sign up form the way the backend would, so obvious
// mistakes are reported before any request is made. All failures are joined.
func (r *RegisterRequest) Validate(now time.Time) error {
	var errs []error

	required := []struct {
		field string
		value string
	}{
		{"nome", r.Nome},
		{"data_nascimento", r.DataNascimento},
		{"cpf", r.CPF},
		{"cnh", r.CNH},
		{"categoria_cnh", r.CategoriaCNH},
		{"validade_cnh", r.ValidadeCNH},
		{"placa_veiculo", r.PlacaVeiculo},
		{"modelo_veiculo", r.ModeloVeiculo},
		{"telefone", r.Telefone},
		{"email", r.Email},
		{"senha", r.Senha},
		{"confirmacao_senha", r.ConfirmacaoSenha},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fieldErr(f.field, ErrRequired))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if err := ValidateEmail(r.Email); err != nil {
		errs = append(errs, fieldErr("email", err))
	}
	if err := ValidatePassword(r.Senha, r.ConfirmacaoSenha); err != nil {
		errs = append(errs, fieldErr("senha", err))
	}
	if err := ValidateCPF(r.CPF); err != nil {
		errs = append(errs, fieldErr("cpf", err))
	}
	if err := ValidateCNH(r.CNH); err != nil {
		errs = append(errs, fieldErr("cnh", err))
	}
	if !slices.Contains(CategoriasCNH, strings.ToUpper(r.CategoriaCNH)) {
		errs = append(errs, fieldErr("categoria_cnh", ErrCategoriaInvalida))
	}
	if err := ValidatePlaca(r.PlacaVeiculo); err != nil {
		errs = append(errs, fieldErr("placa_veiculo", err))
	}
	if err := ValidateTelefone(r.Telefone); err != nil {
		errs = append(errs, fieldErr("telefone", err))
	}

	if birth, err := ParseDate(r.DataNascimento); err != nil {
		errs = append(errs, fieldErr("data_nascimento", ErrDataInvalida))
	} else if err := ValidateAge(birth, now); err != nil {
		errs = append(errs, fieldErr("data_nascimento", err))
	}

	if exp, err := ParseDate(r.ValidadeCNH); err != nil {
		errs = append(errs, fieldErr("validade_cnh", ErrDataInvalida))
	} else if err := ValidateCNHExpiry(exp, now); err != nil {
		errs = append(errs, fieldErr("validade_cnh", err))
	}

	return errors.Join(errs...)
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrEmailInvalido
	}
	return nil
}

// ValidatePassword checks the minimum length and the confirmation.
func ValidatePassword(senha, confirmacao string) error {
	if len([]rune(senha)) < minPasswordLen {
		return ErrSenhaCurta
	}
	if senha != confirmacao {
		return ErrSenhasNaoConferem
	}
	return nil
}

// ValidateCPF checks the format and both check digits.
func ValidateCPF(cpf string) error {
	if !elevenDigitRegex.MatchString(cpf) {
		return ErrCPFInvalido
	}

	if strings.Count(cpf, cpf[:1]) == len(cpf) {
		return ErrCPFInvalido
	}

	if checkDigit(cpf[:9], 10) != int(cpf[9]-'0') {
		return ErrCPFInvalido
	}
	if checkDigit(cpf[:10], 11) != int(cpf[10]-'0') {
		return ErrCPFInvalido
	}
	return nil
}

func checkDigit(digits string, weight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	d := (sum * 10) % 11
	if d == 10 {
		return 0
	}
	return d
}

func ValidateCNH(cnh string) error {
	if !elevenDigitRegex.MatchString(cnh) {
		return ErrCNHInvalida
	}
	return nil
}

// ValidatePlaca accepts the old (ABC1234) and Mercosul (ABC1D23) formats.
func ValidatePlaca(placa string) error {
	p := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(placa)), "-", "")
	if placaAntigaRegex.MatchString(p) || placaMercosul.MatchString(p) {
		return nil
	}
	return ErrPlacaInvalida
}

func ValidateTelefone(telefone string) error {
	if !telefoneRegex.MatchString(telefone) {
		return ErrTelefoneInvalido
	}
	return nil
}

// ValidateAge requires the driver to be at least 18 on the given day.
func ValidateAge(birth, now time.Time) error {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < minAge {
		return ErrMenorIdade
	}
	return nil
}

// ValidateCNHExpiry rejects licenses that expired before the given day.
func ValidateCNHExpiry(exp, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, exp.Location())
	if exp.Before(today) {
		return ErrCNHVencida
	}
	return nil
}

// ValidateDocumentFile checks extension and size of a document to upload.
func ValidateDocumentFile(name string, size int64) error {
	return validateFile(name, size, documentFormats, ErrDocumentoFormato)
}

// ValidatePhotoFile checks extension and size of a profile photo to upload.
func ValidatePhotoFile(name string, size int64) error {
	return validateFile(name, size, photoFormats, ErrFotoFormato)
}

func validateFile(name string, size int64, formats []string, formatErr error) error {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(name), "."))
	if !slices.Contains(formats, ext) {
		return formatErr
	}
	if size > MaxUploadSize {
		return ErrArquivoMuitoGrande
	}
	return nil
}

// ValidateDocumentoTipo checks that tipo is one of the required documents.
func ValidateDocumentoTipo(tipo string) error {
	if !slices.Contains(DocumentosObrigatorios, tipo) {
		return fieldErr(tipo, ErrDocumentoTipo)
	}
	return nil
}

// ValidateDocumentSet checks a batch of documents before upload.
func ValidateDocumentSet(files []DocumentFile) error {
	if len(files) == 0 {
		return ErrNenhumDocumento
	}
	if len(files) > MaxUploadFiles {
		return ErrLimiteArquivos
	}

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if err := ValidateDocumentoTipo(f.Tipo); err != nil {
			return err
		}
		if seen[f.Tipo] {
			return fieldErr(f.Tipo, ErrDocumentoDuplicado)
		}
		seen[f.Tipo] = true
	}
	return nil
}
