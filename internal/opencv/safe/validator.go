package safe

import (
	"fmt"

	"gocv.io/x/gocv"
)

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

// ValidateColorMat checks for a 3-channel 8-bit image, the only layout the
// restoration filters accept.
func ValidateColorMat(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if mat.Channels() != 3 || mat.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("operation %s requires an 8-bit 3-channel Mat, got %d channels of type %d",
			operation, mat.Channels(), int(mat.Type()))
	}

	return nil
}

func ValidateDimensions(width, height, limit int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > limit || height > limit {
		return fmt.Errorf("dimensions %dx%d exceed maximum size %d for operation: %s", width, height, limit, operation)
	}

	return nil
}
