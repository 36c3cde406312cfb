// Command wlsfit fits weighted and robust linear models to CSV data.
//
//	wlsfit fit --data data.csv --intercept --weights-col w --method qr
//	wlsfit robust --data data.csv --intercept --norm tukey --format yaml
package main

import "github.com/ezoic/minwls/pkg/cli"

func main() {
	cli.Execute()
}
