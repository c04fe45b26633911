// ./cmd/hdchart/ephem.go

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
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/mshafiee/humandesign/ephemeris"
	"github.com/mshafiee/humandesign/timeconv"
	"github.com/spf13/cobra"
)

var errNeedsDE = errors.New("this option needs a JPL DE file (--ephe)")

type ephemOptions struct {
	jd          float64
	frame       string
	constants   bool
	masses      bool
	barycentric bool
}

func newEphemCmd(a *app) *cobra.Command {
	var opt ephemOptions
	cmd := &cobra.Command{
		Use:   "ephem",
		Short: "Inspect the ephemeris engine",
		Long: `ephem prints the engine in use and the positions of every body at a Julian
Day (UT). With a DE file it can also dump the header constants, the GM table
derived from them, or ICRF barycentric state vectors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("jd") {
				opt.jd = float64(timeconv.TimeToJulianDay(time.Now()))
			}
			return a.runEphem(opt, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.Float64Var(&opt.jd, "jd", 0, "Julian Day (UT), default now")
	f.StringVar(&opt.frame, "frame", "tropical", "zodiac: tropical or sidereal")
	f.BoolVar(&opt.constants, "constants", false, "list the DE header constants")
	f.BoolVar(&opt.masses, "masses", false, "print the GM table as CSV")
	f.BoolVar(&opt.barycentric, "barycentric", false, "print ICRF barycentric state vectors")
	return cmd
}

func (a *app) runEphem(opt ephemOptions, w io.Writer) error {
	var frame ephemeris.Frame
	switch opt.frame {
	case "tropical":
		frame = ephemeris.Tropical
	case "sidereal":
		frame = ephemeris.Sidereal
	default:
		return fmt.Errorf("unknown frame %q, want tropical or sidereal", opt.frame)
	}

	de, isDE := a.engine.(*ephemeris.DE)
	if (opt.constants || opt.masses || opt.barycentric) && !isDE {
		return errNeedsDE
	}

	switch {
	case opt.constants:
		consts, err := de.Constants()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, c := range consts {
			fmt.Fprintf(tw, "%s\t%.17g\n", c.Name, c.Value)
		}
		return tw.Flush()

	case opt.masses:
		consts, err := de.Constants()
		if err != nil {
			return err
		}
		return gocsv.Marshal(ephemeris.Masses(consts), w)

	case opt.barycentric:
		return writeBarycentric(w, de, timeconv.JulianDay(opt.jd).TT())
	}

	fmt.Fprintf(w, "Engine:  %s\n", a.engine.Name())
	if isDE {
		info := de.Info()
		fmt.Fprintf(w, "File:    %s\n", info.Name)
		fmt.Fprintf(w, "Range:   JED %.1f to %.1f, %g-day records\n", info.Start, info.End, info.Step)
	}
	jd := timeconv.JulianDay(opt.jd)
	fmt.Fprintf(w, "Instant: JD %.6f UT (%s)\n", opt.jd, timeconv.FromJulianDay(jd).Format(time.RFC3339))
	fmt.Fprintf(w, "Frame:   %s\n\n", frame)

	pos, err := a.provider.Positions(jd, frame)
	if err != nil {
		return err
	}
	return writePositions(w, pos)
}

func writeBarycentric(w io.Writer, de *ephemeris.DE, jde float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "BODY\tX\tY\tZ\tVX\tVY\tVZ\t")
	for _, b := range ephemeris.Core {
		sv, err := de.Barycentric(jde, b)
		if err != nil {
			return err
		}
		p, v := sv.Position, sv.Velocity
		fmt.Fprintf(tw, "%s\t%.10f\t%.10f\t%.10f\t%.10f\t%.10f\t%.10f\t\n", b, p[0], p[1], p[2], v[0], v[1], v[2])
	}
	return tw.Flush()
}
