package export

import (
	"encoding/json"
	"os"

	"intradaybar/internal/feature/intradaybar/domain/entity"
)

// JSONSaver writes bars as an indented JSON array.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(bars []entity.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toRows(bars)); err != nil {
		return err
	}
	return f.Close()
}
