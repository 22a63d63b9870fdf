// Package templates scaffolds new gaugekit projects.
//
// Each template is a set of files rendered with text/template:
//
//	minimal   gaugekit.json and one example fixture
//	panel     a set of instrument fixtures covering every resolution strategy
//	s3        like minimal, storing snapshots in an S3 bucket
//
// Usage:
//
//	tmpl, err := templates.Get("panel")
//	if err != nil {
//	    return err
//	}
//	err = tmpl.Create(dir, templates.Config{ProjectName: "pfd"})
package templates
