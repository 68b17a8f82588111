package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/cimillas/boxoffice/internal/logging"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidArgument    = "invalid_argument"
	codeInvalidID          = "invalid_id"
	codeInvalidTicketType  = "invalid_ticket_type"
	codeInvalidQuantity    = "invalid_quantity"
	codeInvalidPrice       = "invalid_price"
	codeNotEnoughSeats     = "not_enough_seats"
	codeEventNotFound      = "event_not_found"
	codeOrderNotFound      = "order_not_found"
	codeTicketNotFound     = "ticket_not_found"
	codeOrderNotCompleted  = "order_not_completed"
	codeEventHasOrders     = "event_has_orders"
	codeInvalidState       = "invalid_state"
	codeTimeout            = "timeout"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// specificCodes names the errors clients commonly branch on.
var specificCodes = []struct {
	err  error
	code string
}{
	{domain.ErrInvalidID, codeInvalidID},
	{domain.ErrInvalidTicketType, codeInvalidTicketType},
	{domain.ErrInvalidQuantity, codeInvalidQuantity},
	{domain.ErrInvalidUnitPrice, codeInvalidPrice},
	{domain.ErrInvalidBasePrice, codeInvalidPrice},
	{domain.ErrOrderAmountTooLarge, codeInvalidPrice},
	{domain.ErrAmountOutOfRange, codeInvalidPrice},
	{domain.ErrNotEnoughSeats, codeNotEnoughSeats},
	{domain.ErrEventNotFound, codeEventNotFound},
	{domain.ErrOrderNotFound, codeOrderNotFound},
	{domain.ErrTicketNotFound, codeTicketNotFound},
	{domain.ErrOrderNotCompleted, codeOrderNotCompleted},
	{domain.ErrEventHasOrders, codeEventHasOrders},
}

// writeServiceError maps a service error to a response by its kind. Errors
// without a kind are logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, codeInternalError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, codeNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code = http.StatusBadRequest, codeInvalidArgument
	case errors.Is(err, domain.ErrCapacityExceeded):
		status, code = http.StatusBadRequest, codeNotEnoughSeats
	case errors.Is(err, domain.ErrInvalidState):
		status, code = http.StatusBadRequest, codeInvalidState
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, codeTimeout
	}

	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		logging.FromContext(r.Context()).WithError(err).Error("request failed")
		msg := "internal error"
		if code == codeTimeout {
			msg = "operation timed out"
		}
		writeError(w, status, code, msg)
		return
	}

	for _, s := range specificCodes {
		if errors.Is(err, s.err) {
			code = s.code
			break
		}
	}
	writeError(w, status, code, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON rejects unknown fields and trailing data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
