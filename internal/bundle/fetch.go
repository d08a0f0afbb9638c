package bundle

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// Fetch retrieves a bundle from a planning-system export endpoint. Bundles
// are produced once per plan and served from static storage, so transient
// failures are worth retrying.
func Fetch(url string) (*plan.DoseInfluence, plan.StructureSet, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = 5
	client.HTTPClient.Timeout = 60 * time.Second
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 10 * time.Second
	client.Logger = nil

	resp, err := client.Get(url)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("fetch bundle: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read bundle body: %w", err)
	}
	if strings.HasSuffix(url, ".zst") || strings.Contains(strings.ToLower(resp.Header.Get("Content-Encoding")), "zstd") {
		data, err = decompress(data)
		if err != nil {
			return nil, nil, err
		}
	}

	log.Info().Str("url", url).Int("bytes", len(data)).Msg("bundle fetched")
	return Decode(data)
}
