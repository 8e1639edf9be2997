package errs

import (
	"fmt"
	"net/http"
	"testing"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", Validation("Validation failed", []FieldError{{Field: "items", Error: "is required"}}), http.StatusBadRequest, "BAD_REQUEST"},
		{"list not found", ListNotFound("abc"), http.StatusBadRequest, "LIST_NOT_FOUND"},
		{"item not found", ItemNotFound("def"), http.StatusBadRequest, "ITEM_NOT_FOUND"},
		{"store", Store("Could not save list", fmt.Errorf("connection reset")), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"wrapped kind", fmt.Errorf("handler: %w", ListNotFound("abc")), http.StatusBadRequest, "LIST_NOT_FOUND"},
		{"http error passes through", NewTooManyRequestsError(0), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHTTPError(tt.err)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", got.Status, tt.wantStatus)
			}
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestStoreErrorHidesCause(t *testing.T) {
	err := Store("Could not save list", fmt.Errorf("dial tcp 10.0.0.1:27017: connection refused"))

	httpErr := ToHTTPError(err)
	if httpErr.Message != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("store cause leaked to client message: %q", httpErr.Message)
	}
	if KindOf(err) != KindStore {
		t.Errorf("KindOf = %s, want store", KindOf(err))
	}
}

func TestValidationCarriesFields(t *testing.T) {
	fields := []FieldError{
		{Field: "id", Error: "must not be supplied"},
		{Field: "date", Error: "is not allowed"},
	}

	httpErr := ToHTTPError(Validation("Validation failed", fields))
	if len(httpErr.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(httpErr.Errors))
	}
	if httpErr.Errors[0].Field != "id" || httpErr.Errors[1].Field != "date" {
		t.Errorf("unexpected field order: %+v", httpErr.Errors)
	}
}
