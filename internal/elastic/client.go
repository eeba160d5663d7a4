package elastic

import (
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"
)

// Connect builds a client for url. Search and index sync are disabled when
// url is empty, in which case Connect returns nil.
func Connect(url string) (*es.Client, error) {
	if url == "" {
		return nil, nil
	}
	client, err := es.NewClient(es.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	log.Info().Str("url", url).Msg("elasticsearch configured")
	return client, nil
}
