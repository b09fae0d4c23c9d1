package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/plutov/paypal/v4"
	"github.com/stripe/stripe-go/v84"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorDump flattens an error chain into log-friendly fields. Only the
// section matching the innermost driver or provider error is filled.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`

	MongoCode    int32  `json:"mongo_code,omitempty"`
	MongoMessage string `json:"mongo_message,omitempty"`

	Provider          string `json:"provider,omitempty"`
	ProviderCode      string `json:"provider_code,omitempty"`
	ProviderStatus    int    `json:"provider_status,omitempty"`
	ProviderRequestID string `json:"provider_request_id,omitempty"`
	ProviderMessage   string `json:"provider_message,omitempty"`
}

// Fields returns the populated dump entries keyed for structured logging.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	put := func(key string, value any) {
		switch v := value.(type) {
		case string:
			if v == "" {
				return
			}
		case int:
			if v == 0 {
				return
			}
		case int32:
			if v == 0 {
				return
			}
		}
		fields[key] = value
	}
	put("pg_code", d.PGCode)
	put("pg_constraint", d.PGConstraint)
	put("pg_table", d.PGTable)
	put("pg_column", d.PGColumn)
	put("pg_detail", d.PGDetail)
	put("pg_message", d.PGMessage)
	put("mongo_code", d.MongoCode)
	put("mongo_message", d.MongoMessage)
	put("provider", d.Provider)
	put("provider_code", d.ProviderCode)
	put("provider_status", d.ProviderStatus)
	put("provider_request_id", d.ProviderRequestID)
	put("provider_message", d.ProviderMessage)
	return fields
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
		return d
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		d.MongoCode = cmdErr.Code
		d.MongoMessage = cmdErr.Message
		return d
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) && len(writeErr.WriteErrors) > 0 {
		d.MongoCode = int32(writeErr.WriteErrors[0].Code)
		d.MongoMessage = writeErr.WriteErrors[0].Message
		return d
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		d.Provider = "stripe"
		d.ProviderCode = string(stripeErr.Code)
		if stripeErr.DeclineCode != "" {
			d.ProviderCode = string(stripeErr.DeclineCode)
		}
		d.ProviderStatus = stripeErr.HTTPStatusCode
		d.ProviderRequestID = stripeErr.RequestID
		d.ProviderMessage = stripeErr.Msg
		return d
	}

	var paypalErr *paypal.ErrorResponse
	if errors.As(err, &paypalErr) {
		d.Provider = "paypal"
		d.ProviderCode = paypalErr.Name
		if paypalErr.Response != nil {
			d.ProviderStatus = paypalErr.Response.StatusCode
		}
		d.ProviderRequestID = paypalErr.DebugID
		d.ProviderMessage = paypalErr.Message
		return d
	}

	return d
}
