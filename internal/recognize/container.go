// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recognize

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdiddy/latex-ocr/internal/container"
)

// ContainerRecognizer recognizes images by piping them through a model
// container image. The image reads one PNG on stdin and prints the LaTeX on
// stdout. It depends on a container.Runtime (docker or podman) injected at
// construction time.
type ContainerRecognizer struct {
	runtime container.Runtime
	image   string
	args    []string
}

// NewContainerRecognizer creates a recognizer that uses the given container
// runtime to run image. It verifies that the image exists locally before
// returning.
func NewContainerRecognizer(ctx context.Context, rt container.Runtime, image string, args ...string) (*ContainerRecognizer, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("model image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerRecognizer{runtime: rt, image: image, args: args}, nil
}

func (c *ContainerRecognizer) Name() string { return "container:" + c.image }

// Recognize pipes the image through the model container and returns its output.
func (c *ContainerRecognizer) Recognize(ctx context.Context, img Image) (string, error) {
	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, c.args, bytes.NewReader(img.PNG), &out); err != nil {
		return "", fmt.Errorf("recognizing %s with %s: %w", img.Path, c.image, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("%s produced empty output for %s: %w", c.image, img.Path, ErrEmptyResult)
	}
	return out.String(), nil
}
