// Package routes resolves named API routes into URL paths.
package routes

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ErrUnknownRoute is returned when a route name is not registered.
var ErrUnknownRoute = errors.New("routes: unknown route")

// ErrMissingParam is returned when fewer params than placeholders are supplied.
var ErrMissingParam = errors.New("routes: missing route parameter")

var placeholder = regexp.MustCompile(`\{[a-z_]+\}`)

var table = map[string]string{
	"auth.login": "/auth/login",
	"auth.me":    "/auth/me",

	"alerts.stock":   "/alerts/stock",
	"alerts.expiry":  "/alerts/expiry",
	"alerts.dismiss": "/alerts/{kind}/dismiss",

	"drafts.store":  "/drafts",
	"drafts.show":   "/drafts/{id}",
	"drafts.submit": "/drafts/{id}/submit",

	"reports.dashboard": "/reports/dashboard",
	"reports.show":      "/reports/{report}",
	"reports.export":    "/reports/{report}/export",
}

func init() {
	for _, resource := range []string{"categories", "products", "customers", "purchases", "sales", "users"} {
		table[resource+".index"] = "/" + resource
		table[resource+".store"] = "/" + resource
		table[resource+".show"] = "/" + resource + "/{id}"
		table[resource+".update"] = "/" + resource + "/{id}"
		table[resource+".destroy"] = "/" + resource + "/{id}"
	}
}

// Resolve returns the path for name with placeholders filled in order by params.
func Resolve(name string, params ...any) (string, error) {
	pattern, ok := table[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	holes := placeholder.FindAllStringIndex(pattern, -1)
	if len(params) < len(holes) {
		return "", fmt.Errorf("%w: %s needs %d, got %d", ErrMissingParam, name, len(holes), len(params))
	}
	i := 0
	return placeholder.ReplaceAllStringFunc(pattern, func(string) string {
		v := fmt.Sprint(params[i])
		i++
		return v
	}), nil
}

// Names lists every registered route name in sorted order.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
