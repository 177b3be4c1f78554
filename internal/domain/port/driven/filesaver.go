package driven

import "context"

// FileSaver persists a retrieved binary payload under a suggested filename and
// returns where it ended up. Implementations must not leave partial files
// behind when they fail.
type FileSaver interface {
	SaveBytes(ctx context.Context, data []byte, filename string) (string, error)
}
