package ledger

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// referenceLayout equivale a yyyyMMddHHmmss.
const referenceLayout = "20060102150405"

var referencePattern = regexp.MustCompile(`^(IN|OUT|TRF)-\d{14}-\d{3}$`)

// ReferenceGenerator genera números de referencia legibles: {PREFIJO}-{yyyyMMddHHmmss}-{NNN}.
// El desambiguador de 3 dígitos es aleatorio; una colisión se detecta al persistir (único en BD)
// y el motor reintenta con un número nuevo.
type ReferenceGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	intn func(n int) int
}

// NewReferenceGenerator generador con reloj UTC y aleatorio por defecto.
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{
		now:  func() time.Time { return time.Now().UTC() },
		intn: rand.IntN,
	}
}

// NewReferenceGeneratorWith permite inyectar reloj y fuente de desambiguadores (tests).
func NewReferenceGeneratorWith(now func() time.Time, intn func(n int) int) *ReferenceGenerator {
	return &ReferenceGenerator{now: now, intn: intn}
}

// Next devuelve una referencia nueva para el tipo dado.
func (g *ReferenceGenerator) Next(t entity.TransactionType) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%s-%s-%03d", t.ReferencePrefix(), g.now().Format(referenceLayout), g.intn(1000))
}

// ValidReference verifica el formato de un número de referencia.
func ValidReference(ref string) bool {
	return referencePattern.MatchString(ref)
}
