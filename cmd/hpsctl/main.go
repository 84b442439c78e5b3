// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Hpsctl is a command-line client for an HPS job management
// deployment.  Usage:
//
//     hpsctl --url https://hps.example.com/hps --username repuser \
//         --password repuser list --project 2Zq3 jobs --filter eval_status=failed
//
// Credentials may also come from the environment (HPS_URL,
// HPS_USERNAME, HPS_PASSWORD, HPS_CLIENT_SECRET) or from a YAML
// configuration file named with --config.
package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/diffeo/go-hps/auth"
	"github.com/diffeo/go-hps/hps"
	"github.com/diffeo/go-hps/restclient"
	"github.com/diffeo/go-hps/restdata"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"os"
	"strings"
	"time"
)

var projectFlag = cli.StringFlag{
	Name:  "project",
	Usage: "id of the project holding the collection",
}

var queryFlags = []cli.Flag{
	projectFlag,
	cli.StringFlag{
		Name:  "fields",
		Usage: "comma-separated fields to retrieve",
	},
	cli.StringSliceFlag{
		Name:  "filter",
		Usage: "field=value restriction, may be repeated",
	},
	cli.IntFlag{
		Name:  "limit",
		Usage: "return at most this many objects",
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "hpsctl"
	app.Usage = "inspect and manipulate an HPS job management deployment"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Usage:  "YAML configuration file",
			EnvVar: "HPS_CONFIG",
		},
		cli.StringFlag{
			Name:   "url",
			Usage:  "base URL of the service",
			EnvVar: "HPS_URL",
		},
		cli.StringFlag{
			Name:   "realm",
			Usage:  "authentication realm",
			EnvVar: "HPS_REALM",
		},
		cli.StringFlag{
			Name:   "username",
			EnvVar: "HPS_USERNAME",
		},
		cli.StringFlag{
			Name:   "password",
			EnvVar: "HPS_PASSWORD",
		},
		cli.StringFlag{
			Name:   "client-secret",
			EnvVar: "HPS_CLIENT_SECRET",
		},
		cli.BoolFlag{
			Name:  "insecure",
			Usage: "do not verify TLS certificates",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Value: time.Minute,
			Usage: "give up on the whole command after this long",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "log every request",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.Bool("debug") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	}
	app.Commands = []cli.Command{
		tokenCommand,
		listCommand,
		countCommand,
		getCommand,
		copyCommand,
		waitCommand,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("hpsctl failed")
	}
}

// connect builds a client from the global flags.
func connect(c *cli.Context) (context.Context, context.CancelFunc, *restclient.Client, error) {
	var config restclient.Config
	if filename := c.GlobalString("config"); filename != "" {
		var err error
		config, err = restclient.LoadConfig(filename)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	if url := c.GlobalString("url"); url != "" {
		config.URL = url
	}
	if realm := c.GlobalString("realm"); realm != "" {
		config.Realm = realm
	}
	if username := c.GlobalString("username"); username != "" {
		config.Username = username
	}
	if password := c.GlobalString("password"); password != "" {
		config.Password = password
	}
	if secret := c.GlobalString("client-secret"); secret != "" {
		config.ClientSecret = secret
	}
	if c.GlobalBool("insecure") {
		config.Verify = restclient.Bool(false)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.GlobalDuration("timeout"))
	client, err := restclient.New(ctx, config)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return ctx, cancel, client, nil
}

// endpoint picks the API root holding a collection.
func endpoint(c *cli.Context, client *restclient.Client, collection string) (*restclient.Endpoint, *hps.Descriptor, error) {
	d, ok := hps.LookupCollection(collection)
	if !ok {
		return nil, nil, fmt.Errorf("unknown collection %q", collection)
	}
	if project := c.String("project"); project != "" {
		api, err := client.Project(project)
		if err != nil {
			return nil, nil, err
		}
		return api.Endpoint, d, nil
	}
	if d.Type == "Evaluator" {
		api, err := client.RMS()
		if err != nil {
			return nil, nil, err
		}
		return api.Endpoint, d, nil
	}
	api, err := client.JMS()
	if err != nil {
		return nil, nil, err
	}
	return api.Endpoint, d, nil
}

func buildQuery(c *cli.Context) (restclient.Query, error) {
	q := restclient.Query{}
	if fields := c.String("fields"); fields != "" {
		q = q.Fields(strings.Split(fields, ",")...)
	}
	for _, filter := range c.StringSlice("filter") {
		parts := strings.SplitN(filter, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("filter %q is not field=value", filter)
		}
		q = q.Filter(parts[0], strings.Split(parts[1], ",")...)
	}
	if limit := c.Int("limit"); limit > 0 {
		q = q.Limit(limit)
	}
	return q, nil
}

// output writes v to stdout as JSON.
func output(v interface{}) error {
	bytes, err := restdata.Encode(v)
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(bytes))
	return err
}

func outputObjects(objs []hps.Object) error {
	items := make([]map[string]interface{}, len(objs))
	for i, obj := range objs {
		m, err := hps.EncodeObject(obj)
		if err != nil {
			return err
		}
		items[i] = m
	}
	return output(items)
}

var tokenCommand = cli.Command{
	Name:  "token",
	Usage: "authenticate and print the access token",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "refresh",
			Usage: "print the refresh token instead",
		},
	},
	Action: func(c *cli.Context) error {
		_, cancel, client, err := connect(c)
		if err != nil {
			return err
		}
		defer cancel()
		if claims, err := auth.ParseClaims(client.AccessToken()); err == nil {
			logrus.WithFields(logrus.Fields{
				"subject":  claims.Subject,
				"username": claims.PreferredUsername,
				"expires":  claims.ExpiresAt,
			}).Info("authenticated")
		}
		if c.Bool("refresh") {
			fmt.Println(client.RefreshToken())
		} else {
			fmt.Println(client.AccessToken())
		}
		return nil
	},
}

var listCommand = cli.Command{
	Name:      "list",
	Usage:     "list the objects of a collection",
	ArgsUsage: "collection",
	Flags:     queryFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("list takes one collection name")
		}
		ctx, cancel, client, err := connect(c)
		if err != nil {
			return err
		}
		defer cancel()
		e, d, err := endpoint(c, client, c.Args().First())
		if err != nil {
			return err
		}
		q, err := buildQuery(c)
		if err != nil {
			return err
		}
		objs, err := e.List(ctx, d, q)
		if err != nil {
			return err
		}
		return outputObjects(objs)
	},
}

var countCommand = cli.Command{
	Name:      "count",
	Usage:     "count the objects of a collection",
	ArgsUsage: "collection",
	Flags:     queryFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("count takes one collection name")
		}
		ctx, cancel, client, err := connect(c)
		if err != nil {
			return err
		}
		defer cancel()
		e, d, err := endpoint(c, client, c.Args().First())
		if err != nil {
			return err
		}
		q, err := buildQuery(c)
		if err != nil {
			return err
		}
		n, err := e.Count(ctx, d.Collection, q)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

var getCommand = cli.Command{
	Name:      "get",
	Usage:     "retrieve one object by id",
	ArgsUsage: "collection id",
	Flags:     []cli.Flag{projectFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return errors.New("get takes a collection name and an id")
		}
		ctx, cancel, client, err := connect(c)
		if err != nil {
			return err
		}
		defer cancel()
		e, d, err := endpoint(c, client, c.Args().Get(0))
		if err != nil {
			return err
		}
		obj, err := e.GetOne(ctx, d, c.Args().Get(1), nil)
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("no %s with id %s", d.Type, c.Args().Get(1))
		}
		return outputObjects([]hps.Object{obj})
	},
}

var copyCommand = cli.Command{
	Name:      "copy",
	Usage:     "copy objects",
	ArgsUsage: "collection id...",
	Flags: []cli.Flag{
		projectFlag,
		cli.BoolFlag{
			Name:  "wait",
			Usage: "wait for the copy and print the new ids",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return errors.New("copy takes a collection name and at least one id")
		}
		ctx, cancel, client, err := connect(c)
		if err != nil {
			return err
		}
		defer cancel()
		e, d, err := endpoint(c, client, c.Args().First())
		if err != nil {
			return err
		}
		var objs []hps.Object
		for _, id := range c.Args().Tail() {
			obj, err := hps.DecodeObject(d, map[string]interface{}{"id": id})
			if err != nil {
				return err
			}
			objs = append(objs, obj)
		}
		if !c.Bool("wait") {
			opID, err := e.Copy(ctx, objs)
			if err != nil {
				return err
			}
			fmt.Println(opID)
			return nil
		}
		ids, err := e.CopyAndWait(ctx, objs, &restclient.Poller{Logger: client.Logger()})
		if err != nil {
			return err
		}
		return output(ids)
	},
}

var waitCommand = cli.Command{
	Name:      "wait",
	Usage:     "wait for an operation to finish",
	ArgsUsage: "operation-id",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("wait takes one operation id")
		}
		ctx, cancel, client, err := connect(c)
		if err != nil {
			return err
		}
		defer cancel()
		jms, err := client.JMS()
		if err != nil {
			return err
		}
		op, err := jms.WaitForOperation(ctx, c.Args().First(), 0)
		if err != nil {
			return err
		}
		return outputObjects([]hps.Object{op})
	},
}
