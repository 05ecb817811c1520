package service

import (
	"context"
	"time"

	"materiaux-pro/internal/apperr"
	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/database/models"
	"materiaux-pro/internal/storage"
)

// defaultQuoteValidity is applied when the creator gives no expiry.
const defaultQuoteValidity = 30 * 24 * time.Hour

type QuoteService struct {
	store storage.Storage
}

func NewQuoteService(store storage.Storage) *QuoteService {
	return &QuoteService{store: store}
}

type QuoteInput struct {
	// ClientID is required for supplier- and admin-initiated quotes;
	// clients always quote for themselves.
	ClientID *int64
	// SupplierID optionally targets a supplier on client-initiated quotes.
	SupplierID *int64
	Lines      []LineInput
	ValidUntil *time.Time
}

// CreateQuote builds a pending quote. Line prices snapshot the product's
// current price into PriceAtQuote; ValidUntil defaults to 30 days out.
func (s *QuoteService) CreateQuote(ctx context.Context, identity auth.Identity, input QuoteInput) (*models.Quote, error) {
	var clientID int64
	var supplierID *int64

	switch identity.Role {
	case auth.RoleClient:
		client, err := s.clientFor(ctx, identity)
		if err != nil {
			return nil, err
		}
		clientID = client.ID
		if input.SupplierID != nil {
			supplier, err := s.store.GetSupplier(ctx, *input.SupplierID)
			if err != nil {
				return nil, err
			}
			if supplier == nil {
				return nil, apperr.New(apperr.Validation, "unknown supplier")
			}
			supplierID = input.SupplierID
		}
	case auth.RoleSupplier:
		supplier, err := s.supplierFor(ctx, identity)
		if err != nil {
			return nil, err
		}
		if input.ClientID == nil {
			return nil, apperr.New(apperr.Validation, "client id is required")
		}
		client, err := s.store.GetClient(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, apperr.New(apperr.Validation, "unknown client")
		}
		clientID = client.ID
		supplierID = &supplier.ID
	case auth.RoleAdmin:
		if input.ClientID == nil {
			return nil, apperr.New(apperr.Validation, "client id is required")
		}
		client, err := s.store.GetClient(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, apperr.New(apperr.Validation, "unknown client")
		}
		clientID = client.ID
		supplierID = input.SupplierID
	default:
		return nil, apperr.New(apperr.Forbidden, "access denied")
	}

	priced, total, err := priceLines(ctx, s.store, input.Lines)
	if err != nil {
		return nil, err
	}

	validUntil := input.ValidUntil
	if validUntil == nil {
		expiry := time.Now().Add(defaultQuoteValidity)
		validUntil = &expiry
	}

	quote := &models.Quote{
		ClientID:   clientID,
		SupplierID: supplierID,
		Status:     models.QuotePending,
		Total:      total,
		ValidUntil: validUntil,
	}
	lines := make([]models.QuoteLine, len(priced))
	for i, line := range priced {
		lines[i] = models.QuoteLine{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			PriceAtQuote: line.Price,
		}
	}
	if err := s.store.CreateQuote(ctx, quote, lines); err != nil {
		return nil, err
	}
	return quote, nil
}

// GetQuote is visible to the owning client, the targeted supplier, and
// admins.
func (s *QuoteService) GetQuote(ctx context.Context, identity auth.Identity, id int64) (*models.Quote, error) {
	quote, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperr.New(apperr.NotFound, "quote not found")
	}
	if err := s.authorizeQuoteAccess(ctx, identity, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *QuoteService) ListClientQuotes(ctx context.Context, identity auth.Identity) ([]models.Quote, error) {
	client, err := s.clientFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.store.ListQuotesByClient(ctx, client.ID)
}

func (s *QuoteService) ListSupplierQuotes(ctx context.Context, identity auth.Identity) ([]models.Quote, error) {
	supplier, err := s.supplierFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.store.ListQuotesBySupplier(ctx, supplier.ID)
}

// UpdateQuoteStatus resolves a pending quote. Clients approve or reject
// their own quotes; the targeted supplier accepts or rejects; admins may
// use either vocabulary. Anyone else is Forbidden.
func (s *QuoteService) UpdateQuoteStatus(ctx context.Context, identity auth.Identity, id int64, status models.QuoteStatus) (*models.Quote, error) {
	quote, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperr.New(apperr.NotFound, "quote not found")
	}

	switch identity.Role {
	case auth.RoleClient:
		client, err := s.clientFor(ctx, identity)
		if err != nil {
			return nil, err
		}
		if quote.ClientID != client.ID {
			return nil, apperr.New(apperr.Forbidden, "quote belongs to another client")
		}
		if status != models.QuoteApproved && status != models.QuoteRejected {
			return nil, apperr.New(apperr.Validation, "clients may approve or reject a quote")
		}
	case auth.RoleSupplier:
		supplier, err := s.supplierFor(ctx, identity)
		if err != nil {
			return nil, err
		}
		if quote.SupplierID == nil || *quote.SupplierID != supplier.ID {
			return nil, apperr.New(apperr.Forbidden, "quote is not addressed to you")
		}
		if status != models.QuoteAccepted && status != models.QuoteRejected {
			return nil, apperr.New(apperr.Validation, "suppliers may accept or reject a quote")
		}
	case auth.RoleAdmin:
		switch status {
		case models.QuoteApproved, models.QuoteAccepted, models.QuoteRejected:
		default:
			return nil, apperr.New(apperr.Validation, "unknown quote status")
		}
	default:
		return nil, apperr.New(apperr.Forbidden, "access denied")
	}

	if quote.Status != models.QuotePending {
		return nil, apperr.New(apperr.Validation, "quote has already been resolved")
	}
	return s.store.UpdateQuoteStatus(ctx, id, status)
}

func (s *QuoteService) authorizeQuoteAccess(ctx context.Context, identity auth.Identity, quote *models.Quote) error {
	switch identity.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleClient:
		client, err := s.clientFor(ctx, identity)
		if err != nil {
			return err
		}
		if quote.ClientID != client.ID {
			return apperr.New(apperr.Forbidden, "quote belongs to another client")
		}
		return nil
	case auth.RoleSupplier:
		supplier, err := s.supplierFor(ctx, identity)
		if err != nil {
			return err
		}
		if quote.SupplierID == nil || *quote.SupplierID != supplier.ID {
			return apperr.New(apperr.Forbidden, "quote is not addressed to you")
		}
		return nil
	}
	return apperr.New(apperr.Forbidden, "access denied")
}

func (s *QuoteService) clientFor(ctx context.Context, identity auth.Identity) (*models.Client, error) {
	client, err := s.store.GetClientByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperr.New(apperr.NotFound, "client profile not found")
	}
	return client, nil
}

func (s *QuoteService) supplierFor(ctx context.Context, identity auth.Identity) (*models.Supplier, error) {
	supplier, err := s.store.GetSupplierByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperr.New(apperr.NotFound, "supplier profile not found")
	}
	return supplier, nil
}
