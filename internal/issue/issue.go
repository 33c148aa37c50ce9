// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	ParamsFileInvalidId
	MissingParameterId
	InvalidParameterId
	ExecutionTokenMissingId
	ProvisioningFailedId
	WorkspaceFailedId
	PipelineNotFoundId
	PipelineFailedId
	PermissionDeniedId
	LogUploadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The lfqrun configuration file could not be read or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ lfqrun config show
~~~

- Write a fresh default file and edit from there:
~~~
$ lfqrun config init
~~~

- Remember that every setting can also come from an environment variable,
  e.g. ` + "`LFQRUN_PROVISION_STORAGE_GIB=200`" + `.`,
	}

	paramsFileInvalidIssue = &Issue{
		id: ParamsFileInvalidId,
		mdMsg: `
# Invalid params file!

The params file could not be decoded or names parameters the pipeline does not declare.

## Things you can try:
- Use YAML, JSON or TOML with one top-level key per parameter:
~~~yaml
input: sample.sdrf
database: proteins.fasta
precursor_mass_tolerance: 10
targeted_only: false
~~~

- List the declared parameters:
~~~
$ lfqrun params list
~~~`,
		extLinks: []HttpLink{"https://nf-co.re/proteomicslfq/parameters"},
	}

	missingParameterIssue = &Issue{
		id: MissingParameterId,
		mdMsg: `
# Mandatory parameter missing!

The pipeline needs an experimental design and a protein database before it can start.

## Things you can try:
- Pass both on the command line:
~~~
$ lfqrun run --input sample.sdrf --database proteins.fasta
~~~

- Or put them in a params file and pass ` + "`--params-file`" + `.`,
	}

	invalidParameterIssue = &Issue{
		id: InvalidParameterId,
		mdMsg: `
# Invalid parameter value!

A parameter value does not match its declared type.

## Things you can try:
- Check the expected type and default:
~~~
$ lfqrun params show <name>
~~~

- Booleans take ` + "`true`" + ` or ` + "`false`" + `, integers and floats take plain numbers.`,
	}

	executionTokenMissingIssue = &Issue{
		id: ExecutionTokenMissingId,
		mdMsg: `
# Execution token not found!

Shared storage is provisioned with the execution token the platform injects
into the task environment. The variable is not set in this process.

## Things you can try:
- Run lfqrun inside a platform task, where ` + "`FLYTE_INTERNAL_EXECUTION_ID`" + ` is set.
- If the platform uses another variable, point lfqrun at it:
~~~cue
provision: {
	token_env: "MY_EXECUTION_TOKEN"
}
~~~

- Inspect the launch without provisioning:
~~~
$ lfqrun run --dry-run --input sample.sdrf --database proteins.fasta
~~~`,
	}

	provisioningFailedIssue = &Issue{
		id: ProvisioningFailedId,
		mdMsg: `
# Storage provisioning failed!

The dispatcher rejected the request for a shared volume or could not be reached.
Nothing was copied and the pipeline was not started.

## Things you can try:
- Check that the dispatcher endpoint in your configuration is reachable from the task.
- Request a smaller volume with ` + "`provision.storage_gib`" + `.
- Retry the execution from the platform; lfqrun never retries on its own.`,
	}

	workspaceFailedIssue = &Issue{
		id: WorkspaceFailedId,
		mdMsg: `
# Workspace could not be prepared!

Copying the pipeline sources onto the shared volume failed.

## Things you can try:
- Check that ` + "`workspace.source_dir`" + ` exists and is readable.
- Check that the volume is mounted at ` + "`workspace.shared_dir`" + ` and writable.
- Add large or irrelevant directories to ` + "`workspace.excludes`" + `.`,
	}

	pipelineNotFoundIssue = &Issue{
		id: PipelineNotFoundId,
		mdMsg: `
# Pipeline runtime not found!

The Nextflow executable configured in ` + "`pipeline.binary`" + ` could not be started.

## Things you can try:
- Check the configured path:
~~~
$ lfqrun config show
~~~

- Make sure the file exists and is executable inside the task image.`,
		extLinks: []HttpLink{"https://www.nextflow.io/docs/latest/install.html"},
	}

	pipelineFailedIssue = &Issue{
		id: PipelineFailedId,
		mdMsg: `
# Pipeline failed!

Nextflow exited with a non-zero status. The pipeline output above and
` + "`.nextflow.log`" + ` in the shared directory describe what went wrong.

## Things you can try:
- Look for the failing process in the Nextflow error report.
- Re-run with ` + "`--verbose`" + ` to see the full command line and environment.`,
		extLinks: []HttpLink{"https://nf-co.re/proteomicslfq"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- The shared directory is not writable by the task user
- The pipeline runtime is not executable

## Things you can try:
- Check file and directory permissions on the volume
- Run lfqrun as the user the task image expects`,
	}

	logUploadFailedIssue = &Issue{
		id: LogUploadFailedId,
		mdMsg: `
# Log upload failed!

The pipeline log could not be stored. The execution result is not affected.

## Things you can try:
- Check the object store settings under ` + "`object_store`" + `.
- Check that ` + "`logs.destination_dir`" + ` is writable when no object store is configured.`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		paramsFileInvalidIssue.Id():     paramsFileInvalidIssue,
		missingParameterIssue.Id():      missingParameterIssue,
		invalidParameterIssue.Id():      invalidParameterIssue,
		executionTokenMissingIssue.Id(): executionTokenMissingIssue,
		provisioningFailedIssue.Id():    provisioningFailedIssue,
		workspaceFailedIssue.Id():       workspaceFailedIssue,
		pipelineNotFoundIssue.Id():      pipelineNotFoundIssue,
		pipelineFailedIssue.Id():        pipelineFailedIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
		logUploadFailedIssue.Id():       logUploadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
