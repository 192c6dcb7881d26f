package repository

import "context"

// ArchiveRepository envia relatórios exportados para um armazenamento remoto.
type ArchiveRepository interface {
	Upload(ctx context.Context, localPath, bucket, prefix string) (string, error)
}
