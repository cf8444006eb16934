package download

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// Sites lists the extractors yt-dlp supports. The list is fetched once and
// cached; a failed listing is retried on the next call.
func (y *YTDLP) Sites(ctx context.Context) ([]string, error) {
	y.sitesMu.Lock()
	defer y.sitesMu.Unlock()

	if y.sites != nil {
		return y.sites, nil
	}
	output, err := y.listSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list supported sites: %w", err)
	}
	y.sites = splitLines(output)
	y.logger.Debug("supported sites listed", "count", len(y.sites))
	return y.sites, nil
}

// Update upgrades yt-dlp in place and returns its last report line
func (y *YTDLP) Update(ctx context.Context) (string, error) {
	y.logger.Info("updating yt-dlp")
	report, err := y.selfUpdate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to update yt-dlp: %w", err)
	}

	y.sitesMu.Lock()
	y.sites = nil
	y.sitesMu.Unlock()

	y.logger.Info("yt-dlp updated", "report", report)
	return report, nil
}

// SearchSites returns the sites containing query, ignoring case. An empty
// query matches everything.
func SearchSites(sites []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	var matches []string
	for _, site := range sites {
		if strings.Contains(strings.ToLower(site), query) {
			matches = append(matches, site)
		}
	}
	return matches
}

func listExtractors(ctx context.Context) (string, error) {
	result, err := ytdlp.New().ListExtractors(ctx)
	if err != nil {
		return "", err
	}
	return result.Stdout, nil
}

// updateYTDLP makes sure a binary is resolved, then runs yt-dlp -U
func updateYTDLP(ctx context.Context) (string, error) {
	if _, err := ytdlp.Install(ctx, &ytdlp.InstallOptions{AllowVersionMismatch: true}); err != nil {
		return "", fmt.Errorf("failed to resolve yt-dlp: %w", err)
	}
	result, err := ytdlp.New().Update(ctx)
	if err != nil {
		return "", err
	}
	lines := splitLines(result.Stdout)
	if len(lines) == 0 {
		return "", nil
	}
	return lines[len(lines)-1], nil
}

func splitLines(output string) []string {
	lines := []string{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
