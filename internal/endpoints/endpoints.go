// Package endpoints maps a tenant (client id) and a logical backend operation
// to a request path. The tenant is always the first path segment. Path shapes
// are a contract with the backend: changing one is a breaking change.
//
// Builders do not validate their inputs; passing an empty tenant yields a
// malformed path and is the caller's mistake.
package endpoints

import (
	"net/url"
	"sort"
	"strconv"
)

// Operation names a backend call.
type Operation string

const (
	OpLogin                 Operation = "login"
	OpRefreshToken          Operation = "refresh-token"
	OpRegister              Operation = "register"
	OpRequestPasswordReset  Operation = "request-password-reset"
	OpResetPassword         Operation = "reset-password"
	OpChecklistModels       Operation = "checklist-models"
	OpChecklistModelDetails Operation = "checklist-model-details"
	OpChecklists            Operation = "checklists"
	OpVehicles              Operation = "vehicles"
	OpDataSync              Operation = "data-sync"
	OpHealthcheck           Operation = "healthcheck"
)

func Login(tenant string) string                { return tenant + "/login" }
func RefreshToken(tenant string) string         { return tenant + "/refresh-token" }
func Register(tenant string) string             { return tenant + "/register" }
func RequestPasswordReset(tenant string) string { return tenant + "/request-password-reset" }
func ResetPassword(tenant string) string        { return tenant + "/reset-password" }
func ChecklistModels(tenant string) string      { return tenant + "/checklistmodel" }
func Checklists(tenant string) string           { return tenant + "/checklist" }
func Vehicles(tenant string) string             { return tenant + "/vehicle" }
func Healthcheck(tenant string) string          { return tenant + "/healthcheck" }

// ChecklistModelDetails returns "{tenant}/checklistmodel/details?Id={id}".
func ChecklistModelDetails(tenant string, id int64) string {
	return tenant + "/checklistmodel/details?Id=" + strconv.FormatInt(id, 10)
}

// DataSync returns "{tenant}/sync?UserId={userID}" with the user id query-escaped.
func DataSync(tenant, userID string) string {
	return tenant + "/sync?UserId=" + url.QueryEscape(userID)
}

// Builder is the uniform shape used by the lookup table. param carries the
// resource id or user id for operations that take one and is ignored otherwise.
type Builder func(tenant, param string) (string, error)

func noParam(f func(string) string) Builder {
	return func(tenant, _ string) (string, error) { return f(tenant), nil }
}

var table = map[Operation]Builder{
	OpLogin:                noParam(Login),
	OpRefreshToken:         noParam(RefreshToken),
	OpRegister:             noParam(Register),
	OpRequestPasswordReset: noParam(RequestPasswordReset),
	OpResetPassword:        noParam(ResetPassword),
	OpChecklistModels:      noParam(ChecklistModels),
	OpChecklistModelDetails: func(tenant, param string) (string, error) {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			return "", ErrInvalidParam
		}
		return ChecklistModelDetails(tenant, id), nil
	},
	OpChecklists: noParam(Checklists),
	OpVehicles:   noParam(Vehicles),
	OpDataSync: func(tenant, param string) (string, error) {
		if param == "" {
			return "", ErrInvalidParam
		}
		return DataSync(tenant, param), nil
	},
	OpHealthcheck: noParam(Healthcheck),
}

// Lookup returns the builder for op.
func Lookup(op Operation) (Builder, bool) {
	b, ok := table[op]
	return b, ok
}

// Resolve is Lookup followed by the call.
func Resolve(op Operation, tenant, param string) (string, error) {
	b, ok := Lookup(op)
	if !ok {
		return "", ErrUnknownOperation
	}
	return b(tenant, param)
}

// Operations lists every supported operation in name order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(table))
	for op := range table {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}
