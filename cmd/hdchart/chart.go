// ./cmd/hdchart/chart.go

/*
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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mshafiee/humandesign"
	"github.com/mshafiee/humandesign/ephemeris"
	"github.com/mshafiee/humandesign/gates"
	"github.com/spf13/cobra"
)

// birthFlags binds the birth data flags shared by chart and vedic.
func birthFlags(cmd *cobra.Command, b *humandesign.BirthData, asJSON *bool) {
	f := cmd.Flags()
	f.StringVar(&b.Date, "date", "", "birth date, YYYY-MM-DD")
	f.StringVar(&b.Time, "time", "", "birth time, HH:MM or HH:MM:SS")
	f.StringVar(&b.Timezone, "tz", "", "IANA timezone of the birth time (default UTC)")
	f.Float64Var(&b.Latitude, "lat", 0, "latitude in degrees, north positive")
	f.Float64Var(&b.Longitude, "lon", 0, "longitude in degrees, east positive")
	f.BoolVar(asJSON, "json", false, "print the chart as JSON")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
}

func newChartCmd(a *app) *cobra.Command {
	var (
		birth  humandesign.BirthData
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Compute a Human Design chart",
		Example: `  hdchart chart --date 1991-08-13 --time 13:31 --tz Asia/Kolkata --lat 12.9716 --lon 77.5946
  hdchart chart --date 1991-08-13 --time 13:31 --tz Asia/Kolkata --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chart, err := a.calc.HumanDesign(cmd.Context(), birth)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), chart)
			}
			return writeHumanDesign(cmd.OutOrStdout(), chart)
		},
	}
	birthFlags(cmd, &birth, &asJSON)
	return cmd
}

func newVedicCmd(a *app) *cobra.Command {
	var (
		birth  humandesign.BirthData
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "vedic",
		Short: "Compute Lahiri sidereal positions and the Moon's nakshatra",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chart, err := a.calc.Vedic(cmd.Context(), birth)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), chart)
			}
			return writeVedic(cmd.OutOrStdout(), chart)
		},
	}
	birthFlags(cmd, &birth, &asJSON)
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// gateRows lists the ten bodies and the Earth in chart order.
var gateRows = []string{"sun", humandesign.Earth, "moon", "mercury", "venus", "mars", "jupiter", "saturn", "uranus", "neptune", "pluto"}

func writeHumanDesign(w io.Writer, c *humandesign.HumanDesignChart) error {
	fmt.Fprintf(w, "Birth:   %s\n", c.BirthTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Design:  %s (%s)\n", c.DesignTime.Format("2006-01-02 15:04:05 MST"), c.DesignMethod)
	fmt.Fprintf(w, "Arc:     %s -> %s = %s\n",
		c.SolarArc.PersonalitySunLongitude, c.SolarArc.DesignSunLongitude, c.SolarArc.SolarArcDifference)
	fmt.Fprintf(w, "Engine:  %s\n\n", c.Engine)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tPERSONALITY\tDESIGN\tGODHEAD")
	for _, name := range gateRows {
		p, d := c.PersonalityGates[name], c.DesignGates[name]
		godhead := ""
		if g, ok := gates.GodheadOf(p); ok {
			godhead = g.Name
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", name, p, d, godhead)
	}
	return tw.Flush()
}

func writeVedic(w io.Writer, c *humandesign.VedicChart) error {
	n := c.MoonNakshatra
	fmt.Fprintf(w, "Birth:     %s\n", c.BirthTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Ayanamsa:  %.6f° (Lahiri)\n", c.Ayanamsa)
	fmt.Fprintf(w, "Nakshatra: %s, pada %d (%.3f° in, Moon %.3f°)\n\n", n.Name, n.Pada, n.DegreesIn, n.Longitude)
	return writePositions(w, c.Positions)
}

func writePositions(w io.Writer, pos ephemeris.Positions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "BODY\tLONGITUDE\tLATITUDE\tDISTANCE\tSPEED\t")
	bodies := append(append([]ephemeris.Body{}, ephemeris.Mandatory...), ephemeris.SouthNode)
	bodies = append(bodies, ephemeris.Optional...)
	for _, b := range bodies {
		p, ok := pos.Get(b)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%.8f\t%.6f\t\n", b, p.Longitude, p.Latitude, p.Distance, p.LongitudeSpeed)
	}
	return tw.Flush()
}
