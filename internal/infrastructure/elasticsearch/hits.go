package elasticsearch

import (
	"encoding/json"
	"io"

	"github.com/oksasatya/go-user-directory/internal/domain/entity"
)

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string     `json:"_id"`
			Source userSource `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeHits(r io.Reader) ([]entity.User, error) {
	var parsed searchResponse
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id := h.Source.ID
		if id == "" {
			id = h.ID
		}
		out = append(out, entity.User{ID: id, Name: h.Source.Name, Email: h.Source.Email, Age: h.Source.Age})
	}
	return out, nil
}
