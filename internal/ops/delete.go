package ops

import "context"

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// Delete permanently removes a prompt.
func Delete(ctx context.Context, store Store, id int64) (*DeleteOutput, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := store.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, ID: id}, nil
}
