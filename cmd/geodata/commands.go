package main

import (
	"fmt"
	"strconv"

	"geodata-api/internal/geodata"
)

func statsCmd() *command {
	return &command{
		flags: newFlags("stats"),
		usage: "stats",
		short: "Count provinces, districts and sub-districts",
		exec: func(e *env, _ []string) error {
			st, err := e.repo.Statistics()
			if err != nil {
				return err
			}
			return e.emit(st, func() {
				e.printf("Provinces: %d\n", st.TotalProvinces)
				e.printf("Districts: %d\n", st.TotalDistricts)
				e.printf("Sub-districts: %d\n", st.TotalSubDistricts)
			})
		},
	}
}

func provinceCmd() *command {
	return &command{
		flags: newFlags("province"),
		usage: "province <code>",
		short: "Show the province with the given code",
		exec: func(e *env, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: province code", errArgsRequired)
			}
			p, ok, err := e.repo.ProvinceByCode(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("province %s: %w", args[0], errNoMatch)
			}
			return e.emit(p, func() { printProvince(e, p) })
		},
	}
}

func printProvince(e *env, p geodata.Province) {
	e.printf("%s\t%s\t%s\n", p.Code, p.NameLocal, p.NameEnglish)
}

func searchCmd() *command {
	fs := newFlags("search")
	lang := fs.StringP("lang", "l", "thai", "name column to search: thai|english")
	return &command{
		flags: fs,
		usage: "search <query> [--lang thai|english]",
		short: "Search provinces by name substring",
		exec: func(e *env, args []string) error {
			l, err := geodata.ParseLanguage(*lang)
			if err != nil {
				return err
			}
			q := ""
			if len(args) > 0 {
				q = args[0]
			}
			ps, err := e.repo.SearchProvincesByName(q, l)
			if err != nil {
				return err
			}
			return e.emit(ps, func() {
				for _, p := range ps {
					printProvince(e, p)
				}
			})
		},
	}
}

func parseProvinceID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: province id", errArgsRequired)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid province id %q", args[0])
	}
	return id, nil
}

func districtsCmd() *command {
	return &command{
		flags: newFlags("districts"),
		usage: "districts <province-id>",
		short: "List district rows of a province (csv encoding)",
		exec: func(e *env, args []string) error {
			id, err := parseProvinceID(args)
			if err != nil {
				return err
			}
			recs, err := e.repo.DistrictsByProvinceID(id)
			if err != nil {
				return err
			}
			return e.emit(recs, func() {
				for _, r := range recs {
					e.printf("%s\t%s\t%s\n", r["DISTRICT_ID"], r["DISTRICT_THAI"], r["DISTRICT_ENGLISH"])
				}
			})
		},
	}
}

func hierarchyCmd() *command {
	return &command{
		flags: newFlags("hierarchy"),
		usage: "hierarchy <province-id>",
		short: "Show a province with its districts and sub-district count",
		exec: func(e *env, args []string) error {
			id, err := parseProvinceID(args)
			if err != nil {
				return err
			}
			h, ok, err := e.repo.ProvinceHierarchy(id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("province %d: %w", id, errNoMatch)
			}
			return e.emit(h, func() {
				e.printf("%s (%s)\n", h.Province.NameEnglish, h.Province.NameLocal)
				e.printf("  districts: %d\n", len(h.Districts))
				e.printf("  sub-districts: %d\n", h.SubDistrictCount)
				for _, d := range h.Districts {
					e.printf("  - %s\n", d.NameEnglish)
				}
			})
		},
	}
}

func verifyCmd() *command {
	return &command{
		flags: newFlags("verify"),
		usage: "verify",
		short: "Compare identifying keys between json and csv encodings",
		exec: func(e *env, _ []string) error {
			var reports []geodata.ConsistencyReport
			for _, ds := range []geodata.Dataset{geodata.Provinces, geodata.Districts, geodata.SubDistricts} {
				rep, err := e.repo.VerifyConsistency(ds)
				if err != nil {
					return err
				}
				reports = append(reports, rep)
			}
			out := map[string]geodata.ConsistencyReport{}
			ok := true
			for _, rep := range reports {
				out[rep.Dataset.String()] = rep
				ok = ok && rep.Consistent()
			}
			if err := e.emit(out, func() {
				for _, rep := range reports {
					if rep.Consistent() {
						e.printf("%s: ok (json %d, csv %d)\n", rep.Dataset, rep.JSONCount, rep.CSVCount)
						continue
					}
					e.printf("%s: mismatch (json %d, csv %d) only-json=%v only-csv=%v\n",
						rep.Dataset, rep.JSONCount, rep.CSVCount, rep.OnlyInJSON, rep.OnlyInCSV)
				}
			}); err != nil {
				return err
			}
			if !ok {
				return errInconsistent
			}
			return nil
		},
	}
}

func exportCmd() *command {
	fs := newFlags("export")
	format := fs.StringP("format", "f", "json", "output encoding: json|csv")
	out := fs.StringP("out", "o", "", "destination file")
	return &command{
		flags: fs,
		usage: "export <dataset> --format json|csv --out <file>",
		short: "Write a dataset to a new file",
		exec: func(e *env, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: dataset", errArgsRequired)
			}
			ds, err := geodata.ParseDataset(args[0])
			if err != nil {
				return err
			}
			f, err := geodata.ParseFormat(*format)
			if err != nil {
				return err
			}
			if *out == "" {
				return errOutRequired
			}
			if err := e.repo.Export(ds, f, *out); err != nil {
				return err
			}
			e.printf("exported %s (%s) to %s\n", ds, f, *out)
			return nil
		},
	}
}
