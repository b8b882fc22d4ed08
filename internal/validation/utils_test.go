package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/tutorial-service/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	ID    int64  `param:"id" json:"-" validate:"min=1"`
	Title string `json:"title" validate:"max=5"`
}

func (r *sampleRequest) Validate() error {
	return Struct(r)
}

type customRequest struct{}

func (r *customRequest) Validate() error {
	return CustomValidationErrors{{Field: "title", Message: "is reserved"}}
}

func newContext(method, body, id string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, "/items/"+id, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/items/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func requireHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	httpErr, ok := err.(*errs.HTTPError)
	require.True(t, ok, "expected *errs.HTTPError, got %T", err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr
}

func TestBindAndValidate_OK(t *testing.T) {
	req := &sampleRequest{}
	err := BindAndValidate(newContext(http.MethodPut, `{"title":"Go"}`, "3"), req)

	require.NoError(t, err)
	assert.Equal(t, int64(3), req.ID)
	assert.Equal(t, "Go", req.Title)
}

func TestBindAndValidate_BodyCannotOverridePathID(t *testing.T) {
	req := &sampleRequest{}
	err := BindAndValidate(newContext(http.MethodPut, `{"id":99,"title":"Go"}`, "3"), req)

	require.NoError(t, err)
	assert.Equal(t, int64(3), req.ID)
}

func TestBindAndValidate_NonNumericID(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodGet, "", "abc"), &sampleRequest{})

	httpErr := requireHTTPError(t, err)
	assert.Equal(t, "Invalid value for 'id'", httpErr.Message)
	assert.Equal(t, []errs.FieldError{{Field: "id", Error: "has an invalid value"}}, httpErr.Errors)
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"title":`, "1"), &sampleRequest{})

	httpErr := requireHTTPError(t, err)
	assert.Equal(t, "Malformed request body", httpErr.Message)
}

func TestBindAndValidate_TagFailures(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPut, `{"title":"too long"}`, "0"), &sampleRequest{})

	httpErr := requireHTTPError(t, err)
	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "id", Error: "must be at least 1"},
		{Field: "title", Error: "must not exceed 5 characters"},
	}, httpErr.Errors)
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodGet, "", "1"), &customRequest{})

	httpErr := requireHTTPError(t, err)
	assert.Equal(t, []errs.FieldError{{Field: "title", Error: "is reserved"}}, httpErr.Errors)
}

type bodyRequest struct {
	Title string `json:"title"`
}

func (r *bodyRequest) Validate() error {
	return nil
}

func (r *bodyRequest) RequiresBody() bool {
	return true
}

func TestBindAndValidate_RequiredBodyMissing(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, "", "1"), &bodyRequest{})

	httpErr := requireHTTPError(t, err)
	assert.Equal(t, "Required request body is missing", httpErr.Message)

	req := &bodyRequest{}
	require.NoError(t, BindAndValidate(newContext(http.MethodPost, `{"title":"Go"}`, "1"), req))
	assert.Equal(t, "Go", req.Title)
}

type pageRequest struct {
	Page int `query:"page"`
}

func (r *pageRequest) Validate() error {
	return nil
}

func TestBindAndValidate_NonNumericQueryParam(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/items?q=go&page=two", nil), httptest.NewRecorder())

	httpErr := requireHTTPError(t, BindAndValidate(c, &pageRequest{}))
	assert.Equal(t, "Invalid value for 'page'", httpErr.Message)
	assert.Equal(t, []errs.FieldError{{Field: "page", Error: "has an invalid value"}}, httpErr.Errors)
}

func TestBindAndValidate_UnsupportedContentType(t *testing.T) {
	c := newContext(http.MethodPost, "title=Go", "1")
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMETextPlain)

	httpErr := requireHTTPError(t, BindAndValidate(c, &sampleRequest{}))
	assert.Equal(t, "Unsupported content type", httpErr.Message)
}
