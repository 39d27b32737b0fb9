package ctl

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/ledgercache"
	"github.com/unkn0wn-root/ledgercache/codec"
	"github.com/urfave/cli/v2"
)

type (
	strCell = ledgercache.CachedCell[string]
	strVec  = ledgercache.Vec[string]
	strMap  = ledgercache.IterableMapping[string, string]
)

func bindCell(sess *ledgercache.Session, key []byte) *strCell {
	return ledgercache.NewCachedCell[string](sess, key, codec.String{})
}

func bindVec(sess *ledgercache.Session, key []byte) *strVec {
	v := ledgercache.NewVec[string](sess, key, codec.String{})
	v.Initialize()
	return v
}

func bindMap(sess *ledgercache.Session, key []byte) *strMap {
	m := ledgercache.NewIterableMapping[string, string](sess, key, codec.String{}, codec.String{})
	m.Initialize()
	return m
}

func (a *App) cellCommand() *cli.Command {
	return &cli.Command{
		Name:  "cell",
		Usage: "single value slots",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					return call(c, a, true, bindCell, func(cell *strCell) error {
						v, ok := cell.Get()
						if !ok {
							return fmt.Errorf("%s: %w", c.Args().First(), errNotFound)
						}
						fmt.Fprintln(a.out, v)
						return nil
					})
				},
			},
			{
				Name:      "set",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					v, err := arg(c, 1, "value")
					if err != nil {
						return err
					}
					return call(c, a, false, bindCell, func(cell *strCell) error {
						cell.Set(v)
						return nil
					})
				},
			},
			{
				Name:      "rm",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					return call(c, a, false, bindCell, func(cell *strCell) error {
						if _, ok := cell.Get(); !ok {
							return fmt.Errorf("%s: %w", c.Args().First(), errNotFound)
						}
						cell.Remove()
						return nil
					})
				},
			},
		},
	}
}

func (a *App) vecCommand() *cli.Command {
	return &cli.Command{
		Name:  "vec",
		Usage: "dynamic vectors (push, pop, set, list)",
		Subcommands: []*cli.Command{
			{
				Name:      "push",
				ArgsUsage: "<key> <value>...",
				Action: func(c *cli.Context) error {
					vals := c.Args().Tail()
					if len(vals) == 0 {
						return fmt.Errorf("missing value")
					}
					return call(c, a, false, bindVec, func(v *strVec) error {
						for _, s := range vals {
							v.Push(s)
						}
						fmt.Fprintln(a.out, v.Len())
						return nil
					})
				},
			},
			{
				Name:      "pop",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					return call(c, a, false, bindVec, func(v *strVec) error {
						s, ok := v.Pop()
						if !ok {
							return fmt.Errorf("%s: empty", c.Args().First())
						}
						fmt.Fprintln(a.out, s)
						return nil
					})
				},
			},
			{
				Name:      "set",
				ArgsUsage: "<key> <index> <value>",
				Action: func(c *cli.Context) error {
					idx, err := arg(c, 1, "index")
					if err != nil {
						return err
					}
					val, err := arg(c, 2, "value")
					if err != nil {
						return err
					}
					var n uint32
					if _, err := fmt.Sscan(idx, &n); err != nil {
						return fmt.Errorf("index %q: %w", idx, err)
					}
					return call(c, a, false, bindVec, func(v *strVec) error {
						v.SetIndex(n, val)
						return nil
					})
				},
			},
			{
				Name:      "list",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					return call(c, a, true, bindVec, func(v *strVec) error {
						for i, s := range v.All() {
							fmt.Fprintf(a.out, "%d\t%s\n", i, s)
						}
						return nil
					})
				},
			},
		},
	}
}

func (a *App) mapCommand() *cli.Command {
	return &cli.Command{
		Name:  "map",
		Usage: "iterable string mappings",
		Subcommands: []*cli.Command{
			{
				Name:      "put",
				ArgsUsage: "<key> <field> <value>",
				Action: func(c *cli.Context) error {
					k, err := arg(c, 1, "field")
					if err != nil {
						return err
					}
					v, err := arg(c, 2, "value")
					if err != nil {
						return err
					}
					return call(c, a, false, bindMap, func(m *strMap) error {
						if old, ok := m.Insert(k, v); ok {
							fmt.Fprintln(a.out, old)
						}
						return nil
					})
				},
			},
			{
				Name:      "get",
				ArgsUsage: "<key> <field>",
				Action: func(c *cli.Context) error {
					k, err := arg(c, 1, "field")
					if err != nil {
						return err
					}
					return call(c, a, true, bindMap, func(m *strMap) error {
						v, ok := m.Get(k)
						if !ok {
							return fmt.Errorf("%s[%s]: %w", c.Args().First(), k, errNotFound)
						}
						fmt.Fprintln(a.out, v)
						return nil
					})
				},
			},
			{
				Name:      "del",
				ArgsUsage: "<key> <field>",
				Action: func(c *cli.Context) error {
					k, err := arg(c, 1, "field")
					if err != nil {
						return err
					}
					return call(c, a, false, bindMap, func(m *strMap) error {
						if _, ok := m.Remove(k); !ok {
							return fmt.Errorf("%s[%s]: %w", c.Args().First(), k, errNotFound)
						}
						return nil
					})
				},
			},
			{
				Name:      "list",
				ArgsUsage: "<key>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "prefix", Usage: "only fields starting with prefix"}},
				Action: func(c *cli.Context) error {
					prefix := c.String("prefix")
					return call(c, a, true, bindMap, func(m *strMap) error {
						for k, v := range m.All() {
							if strings.HasPrefix(k, prefix) {
								fmt.Fprintf(a.out, "%s\t%s\n", k, v)
							}
						}
						return nil
					})
				},
			},
		},
	}
}
