package service

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

// Validation limits. MaxAmount is the processor's ceiling in minor units.
const (
	MaxAmount          = 99_999_900
	maxEmailLength     = 254
	maxNameLength      = 100
	maxProductLength   = 200
	maxMetadataKeys    = 50
	maxMetadataValue   = 500
	maxCartItemsInMeta = 15
)

// sessionIDPrefix is the processor's checkout session id prefix.
const sessionIDPrefix = "cs_"

// supportedCurrencies is the fixed allow-list, lowercase.
var supportedCurrencies = map[string]struct{}{
	"usd": {}, "eur": {}, "gbp": {}, "cad": {}, "aud": {},
}

// emailPattern is a deliberately simple local@domain.tld shape check;
// deliverability is the processor's problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// cartItemKeyPattern matches the item_N_* metadata keys used to embed cart
// contents.
var cartItemKeyPattern = regexp.MustCompile(`^item_(\d+)_(name|price|quantity)$`)

// PaymentProvider is the interface to the external payment processor.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (string, error)
	RetrieveSession(ctx context.Context, sessionID string) (*domain.PaymentVerification, error)
}

// CreateSessionParams contains everything the provider needs to create one
// hosted checkout session.
type CreateSessionParams struct {
	Amount        int64
	Currency      string
	CustomerEmail string
	ProductName   string
	SuccessURL    string
	CancelURL     string
	ExpiresAt     time.Time
	Metadata      map[string]string
}

// CheckoutService validates checkout requests and relays them to the
// payment provider. It holds no state of its own.
type CheckoutService struct {
	provider       PaymentProvider
	frontendDomain string
	sessionExpiry  time.Duration
	log            *zap.Logger
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(provider PaymentProvider, frontendDomain string, sessionExpiry time.Duration, log *zap.Logger) *CheckoutService {
	return &CheckoutService{
		provider:       provider,
		frontendDomain: frontendDomain,
		sessionExpiry:  sessionExpiry,
		log:            log,
	}
}

// ValidateRequest checks every field of a checkout request in a fixed order.
// The request is rejected wholesale on the first violation; there is no
// partial acceptance.
func ValidateRequest(req domain.CheckoutRequest) error {
	if req.Amount <= 0 || req.Amount > MaxAmount {
		return ErrInvalidAmount
	}
	if _, ok := supportedCurrencies[strings.ToLower(req.Currency)]; !ok {
		return ErrUnsupportedCurrency
	}
	if req.CustomerEmail == "" || len(req.CustomerEmail) > maxEmailLength || !emailPattern.MatchString(req.CustomerEmail) {
		return ErrInvalidEmail
	}
	if req.ProductName == "" || len(req.ProductName) > maxProductLength {
		return ErrInvalidProductName
	}
	if len(req.CustomerName) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// CreateSession validates the request, then makes a single call to the
// payment provider. Provider failures come back as the generic
// ErrCheckoutSessionFailed; the cause stays in the server log.
func (s *CheckoutService) CreateSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	// customer_name goes in before capping so the 50-key ceiling holds for
	// the full map the provider will see.
	merged := req.Metadata
	if req.CustomerName != "" {
		merged = make(map[string]string, len(req.Metadata)+1)
		for k, v := range req.Metadata {
			merged[k] = v
		}
		merged["customer_name"] = req.CustomerName
	}
	metadata := CapMetadata(merged)

	sessionID, err := s.provider.CreateCheckoutSession(ctx, CreateSessionParams{
		Amount:        req.Amount,
		Currency:      strings.ToLower(req.Currency),
		CustomerEmail: req.CustomerEmail,
		ProductName:   req.ProductName,
		SuccessURL:    s.frontendDomain + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.frontendDomain + "/cancel",
		ExpiresAt:     time.Now().Add(s.sessionExpiry),
		Metadata:      metadata,
	})
	if err != nil {
		s.log.Error("checkout session creation failed",
			zap.String("currency", req.Currency),
			zap.Int64("amount", req.Amount),
			zap.Error(err),
		)
		return nil, ErrCheckoutSessionFailed
	}

	return &domain.CheckoutSession{ID: sessionID}, nil
}

// VerifyPayment fetches the processor's view of a session. Syntactically
// invalid ids are rejected without any outbound call. The result may report
// an unfinalized status; callers must tolerate that.
func (s *CheckoutService) VerifyPayment(ctx context.Context, sessionID string) (*domain.PaymentVerification, error) {
	if sessionID == "" || !strings.HasPrefix(sessionID, sessionIDPrefix) {
		return nil, ErrInvalidSessionID
	}

	verification, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		if err == ErrSessionNotFound {
			return nil, ErrSessionNotFound
		}
		s.log.Error("payment verification failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil, ErrVerificationFailed
	}

	return verification, nil
}

// CapMetadata enforces the processor's metadata ceiling server-side rather
// than trusting caller discipline: cart item keys past the 15th item (or
// with an unparseable index) are dropped, every value is truncated to the
// processor's 500-byte limit on a rune boundary, and the total key count is
// capped at 50. Over the key cap, whole cart items are shed from the
// highest index down so the shipping and order keys survive.
func CapMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}

	capped := make(map[string]string, len(metadata))
	for key, value := range metadata {
		if m := cartItemKeyPattern.FindStringSubmatch(key); m != nil {
			index, err := strconv.Atoi(m[1])
			if err != nil || index > maxCartItemsInMeta {
				continue
			}
		}
		capped[key] = truncateMetadataValue(value)
	}

	if len(capped) > maxMetadataKeys {
		trimToKeyCap(capped)
	}

	if len(capped) == 0 {
		return nil
	}
	return capped
}

// truncateMetadataValue cuts a value to the processor's byte limit without
// splitting a multi-byte rune.
func truncateMetadataValue(value string) string {
	if len(value) <= maxMetadataValue {
		return value
	}
	cut := maxMetadataValue
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}

// trimToKeyCap deletes keys in place until the key cap holds. Cart item
// keys go first, a whole item at a time from the highest index down; only
// when the non-item keys alone exceed the cap is their lexicographic tail
// cut.
func trimToKeyCap(capped map[string]string) {
	itemKeys := make(map[int][]string)
	var itemIndexes []int
	var otherKeys []string
	for k := range capped {
		if m := cartItemKeyPattern.FindStringSubmatch(k); m != nil {
			index, _ := strconv.Atoi(m[1])
			if len(itemKeys[index]) == 0 {
				itemIndexes = append(itemIndexes, index)
			}
			itemKeys[index] = append(itemKeys[index], k)
			continue
		}
		otherKeys = append(otherKeys, k)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(itemIndexes)))
	for _, index := range itemIndexes {
		if len(capped) <= maxMetadataKeys {
			return
		}
		for _, k := range itemKeys[index] {
			delete(capped, k)
		}
	}

	if len(capped) > maxMetadataKeys {
		sort.Strings(otherKeys)
		for _, k := range otherKeys[maxMetadataKeys:] {
			delete(capped, k)
		}
	}
}
