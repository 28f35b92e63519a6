// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/account-service/internal/domain"
	"github.com/go-petr/account-service/pkg/errorspkg"
	"github.com/go-petr/account-service/pkg/web"
)

// Statuses reported next to the account in successful responses.
const (
	StatusCreated = "CREATED"
	StatusRead    = "READ"
	StatusUpdated = "UPDATED"
	StatusDeleted = "DELETED"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, balance decimal.Decimal) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Deposit(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error)
	Delete(ctx context.Context, id int64) (domain.Account, error)
	TransferDetailed(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service        Service
	initialBalance decimal.Decimal
}

// NewHandler returns account handler. Accounts created without an explicit balance start
// with initialBalance.
func NewHandler(as Service, initialBalance decimal.Decimal) *Handler {
	return &Handler{
		service:        as,
		initialBalance: initialBalance,
	}
}

type data struct {
	Account   domain.Account  `json:"account"`
	ToAccount *domain.Account `json:"to_account,omitempty"`
	Status    string          `json:"status"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type createRequest struct {
	Balance json.Number `json:"balance" binding:"omitempty,balance"`
}

type amountRequest struct {
	Amount json.Number `json:"amount" binding:"required,money"`
}

type transferRequest struct {
	FromAccountID int64       `json:"from_id" binding:"required,min=1"`
	ToAccountID   int64       `json:"to_id" binding:"required,min=1"`
	Amount        json.Number `json:"amount" binding:"required,money"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(gctx, err)
		return
	}

	balance := h.initialBalance
	if req.Balance != "" {
		var err error

		balance, err = parseAmount("balance", req.Balance)
		if err != nil {
			fail(gctx, err)
			return
		}
	}

	account, err := h.service.Create(ctx, balance)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: data{Account: account, Status: StatusCreated}})
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	account, err := h.service.Get(gctx.Request.Context(), req.ID)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{Account: account, Status: StatusRead}})
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	accounts, err := h.service.List(gctx.Request.Context())
	if err != nil {
		fail(gctx, err)
		return
	}

	if accounts == nil {
		accounts = []domain.Account{}
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataAccounts{Accounts: accounts}})
}

// Deposit handles http request to add money to an account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.changeBalance(gctx, h.service.Deposit)
}

// Withdraw handles http request to take money from an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.changeBalance(gctx, h.service.Withdraw)
}

func (h *Handler) changeBalance(
	gctx *gin.Context,
	change func(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error),
) {
	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		fail(gctx, err)
		return
	}

	account, err := change(gctx.Request.Context(), uri.ID, amount)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{Account: account, Status: StatusUpdated}})
}

// Transfer handles http request to move money between two accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		fail(gctx, err)
		return
	}

	result, err := h.service.TransferDetailed(gctx.Request.Context(), domain.TransferParams{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        amount,
	})
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{
		Account:   result.FromAccount,
		ToAccount: &result.ToAccount,
		Status:    StatusUpdated,
	}})
}

// Delete handles http request to delete account.
func (h *Handler) Delete(gctx *gin.Context) {
	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	account, err := h.service.Delete(gctx.Request.Context(), req.ID)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{Account: account, Status: StatusDeleted}})
}

// Health reports that the server accepts requests.
func (h *Handler) Health(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"status": "UP"}})
}

func parseAmount(field string, n json.Number) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, &domain.InvalidArgumentError{Field: field, Reason: "not a decimal number"}
	}

	return d, nil
}

func badRequest(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingError(err)})
}

func fail(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	switch domain.KindOf(err) {
	case domain.KindInvalidArgument:
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case domain.KindNoSuchAccount:
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.KindInsufficientFunds, domain.KindTransferToSameAccount:
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusPreconditionFailed, web.Error(err))
	default:
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}
