package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/label"
	"github.com/jgreitemann/svm/model"
	"github.com/jgreitemann/svm/serialization"
)

// SnapshotKey is where the snapshot of the named model lives.
func SnapshotKey(name string, format serialization.Format) string {
	return fmt.Sprintf("models/%s.%s", name, format)
}

// SaveModel uploads a snapshot of m under SnapshotKey(name, format).
func SaveModel[L comparable](ctx context.Context, client *Client, name string, m *model.Model[L], format serialization.Format) error {
	var buf bytes.Buffer
	if err := serialization.Save(&buf, m, format); err != nil {
		return err
	}
	return client.Upload(ctx, SnapshotKey(name, format), buf.Bytes())
}

// LoadModel downloads and restores a snapshot written by SaveModel.
func LoadModel[L comparable](ctx context.Context, client *Client, name string, format serialization.Format, space label.Space[L], k kernel.Kernel) (*model.Model[L], error) {
	b, err := client.Download(ctx, SnapshotKey(name, format))
	if err != nil {
		return nil, err
	}
	return serialization.Load(bytes.NewReader(b), space, k, format)
}
