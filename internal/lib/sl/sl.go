// Package sl дополняет log/slog короткими помощниками для атрибутов,
// которые повторяются по всему коду сервиса.
package sl

import "log/slog"

// Err упаковывает ошибку в атрибут с ключом "error", чтобы все записи
// об ошибках в логе выглядели одинаково: log.Error("...", sl.Err(err)).
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
