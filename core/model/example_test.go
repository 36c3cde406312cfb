package model_test

import (
	"fmt"
	"os"

	"github.com/ezoic/minwls/core/model"
)

// ExampleStateManager demonstrates fitted-state tracking
func ExampleStateManager() {
	state := model.NewStateManager()
	fmt.Printf("Initially fitted: %t\n", state.IsFitted())

	state.SetFitted()
	state.SetDimensions(3, 100)
	nFeatures, nSamples := state.Dimensions()
	fmt.Printf("After SetFitted: %t (%d features, %d samples)\n", state.IsFitted(), nFeatures, nSamples)

	state.Reset()
	fmt.Printf("After Reset: %t\n", state.IsFitted())

	// Output: Initially fitted: false
	// After SetFitted: true (3 features, 100 samples)
	// After Reset: false
}

// ExampleExport writes a model envelope
func ExampleExport() {
	params := struct {
		Coefficients []float64 `json:"coefficients"`
	}{Coefficients: []float64{1.5, -2}}

	if err := model.Export("LinearRegression", params, os.Stdout); err != nil {
		fmt.Println(err)
	}

	// Output:
	// {
	//   "model_spec": {
	//     "name": "LinearRegression",
	//     "format_version": "1.0"
	//   },
	//   "params": {
	//     "coefficients": [
	//       1.5,
	//       -2
	//     ]
	//   }
	// }
}
