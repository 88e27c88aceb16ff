package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica se o erro é violação de constraint única (23505).
// Distingue "já existe" de violações de integridade genuínas (ex.: FK malformada).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// nullIfEmpty converte string vazia em NULL na escrita.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
