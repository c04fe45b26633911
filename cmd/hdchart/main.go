// ./cmd/hdchart/main.go

/*
Command hdchart computes Human Design and Vedic charts from the command line.

	hdchart chart --date 1991-08-13 --time 13:31 --tz Asia/Kolkata --lat 12.9716 --lon 77.5946
	hdchart vedic --date 1991-08-13 --time 13:31 --tz Asia/Kolkata
	hdchart batch --in births.csv --out charts.csv --workers 8
	hdchart ephem --jd 2451545.0 --masses

The ephemeris is the built-in analytic theory unless a JPL DE file is given
through --ephe, HDCHART_EPHE_PATH or the config file.

This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
