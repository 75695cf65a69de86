package match

import (
	"context"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/scan"
)

// CheckRegexRatchet scans root for files with ext, skipping self, and returns every match of p.
// Chunks are ordered by file walk order, then by position within each file.
func CheckRegexRatchet(ctx context.Context, root string, ext domain.FileExtension, p *RegexPattern, self string, opts ...scan.ScanOption) ([]domain.Chunk, error) {
	scanner, err := scan.New(root, ext, append(opts, scan.WithSelf(self))...)
	if err != nil {
		return nil, err
	}
	return FindInTree(ctx, scanner, p)
}

// FindInTree applies p to every file the scanner yields.
func FindInTree(ctx context.Context, scanner *scan.Scanner, p *RegexPattern, opts ...FindOption) ([]domain.Chunk, error) {
	src := scanner.Source()

	var chunks []domain.Chunk
	for path, err := range scanner.All(ctx) {
		if err != nil {
			return nil, err
		}

		content, err := src.ReadFile(ctx, path)
		if err != nil {
			return nil, err
		}

		found, err := Find(path, content, p, opts...)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, found...)
	}
	return chunks, nil
}
