package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditflow-pro/auditflow-pro/cmd/cli/audits"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
	"github.com/auditflow-pro/auditflow-pro/internal/utils"
	"github.com/auditflow-pro/auditflow-pro/internal/utils/flags"
	pathutils "github.com/auditflow-pro/auditflow-pro/internal/utils/path"
)

const (
	applicationNameConstant             = "auditflow"
	applicationShortDescriptionConstant = "Walk compliance checklists, track remediation actions, and score exposure"
	applicationLongDescriptionConstant  = "auditflow records checklist audits for clients and sites. NO answers raise remediation actions, and an audit can only be completed once every action is closed."

	configFileFlagNameConstant  = "config"
	configFileFlagUsageConstant = "Path to a configuration file (YAML or JSON)"
	logLevelFlagNameConstant    = "log-level"
	logLevelFlagUsageConstant   = "Log level: debug, info, warn, or error"
	logFormatFlagNameConstant   = "log-format"
	logFormatFlagUsageConstant  = "Log format: structured or console"
	storePathFlagNameConstant   = "store"
	storePathFlagUsageConstant  = "Audit store file, overriding store.path"

	commonLogLevelConfigKeyConstant  = "common.log_level"
	commonLogFormatConfigKeyConstant = "common.log_format"
	cliConfigurationKeyConstant      = "cli"
	environmentPrefixConstant        = "AUDITFLOW"
	configurationNameConstant        = "config"
	configurationTypeConstant        = "yaml"
	workingDirectorySearchPath       = "."
	userConfigurationSearchPath      = "~/.auditflow"

	configurationLoadErrorTemplateConstant = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant    = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant        = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant      = "unable to build audit commands: %w"

	configurationResolvedMessageConstant = "configuration initialized"
	logFieldLogLevelConstant             = "log_level"
	logFieldLogFormatConstant            = "log_format"
	logFieldConfigFileConstant           = "config_file"
	logFieldStoreLocationConstant        = "store_location"
	logFieldCommandPathConstant          = "command"
	logFieldArgumentsConstant            = "arguments"

	versionTemplateConstant       = "auditflow version: {{.Version}}\n"
	developmentVersionConstant    = "dev"
	develBuildVersionConstant     = "(devel)"
	storeLocationTemplateConstant = "%s:%s"
)

// ApplicationConfiguration is the decoded configuration document. The session keys
// (store, checklist, exposure) sit at the top level next to common and cli.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Session session.Configuration          `mapstructure:",squash"`
	CLI     audits.CommandConfiguration    `mapstructure:"cli"`
}

// ApplicationCommonConfiguration holds logging settings shared by every command.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// rootFlagValues captures the persistent root flags before they are layered over the configuration.
type rootFlagValues struct {
	configurationFilePath string
	logLevel              string
	logFormat             string
	storePath             string
}

// Application owns the root command and the state shared by every subcommand invocation.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	rootFlags              rootFlagValues
	commandContextAccessor utils.CommandContextAccessor
	homeExpander           *pathutils.HomeExpander
	versionResolver        func(context.Context) string
	commandBuildError      error
}

// NewApplication builds the root command with every audit subcommand attached.
func NewApplication() *Application {
	homeExpander := pathutils.NewHomeExpander()
	configurationLoader := utils.NewConfigurationLoader(utils.ConfigurationLoaderSettings{
		FileName:          configurationNameConstant,
		Format:            configurationTypeConstant,
		EnvironmentPrefix: environmentPrefixConstant,
		SearchDirectories: []string{workingDirectorySearchPath, homeExpander.Expand(userConfigurationSearchPath)},
	}).WithBuiltInDocument(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		homeExpander:           homeExpander,
		versionResolver:        resolveBuildVersion,
	}

	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	rootCommand.SetContext(context.Background())
	rootCommand.SetVersionTemplate(versionTemplateConstant)

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&application.rootFlags.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.rootFlags.logLevel, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.rootFlags.logFormat, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	persistentFlags.StringVar(&application.rootFlags.storePath, storePathFlagNameConstant, "", storePathFlagUsageConstant)

	auditsBuilder := audits.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() audits.CommandConfiguration {
			return application.configuration.CLI
		},
		SessionConfigurationProvider: func() session.Configuration {
			return application.configuration.Session
		},
	}
	auditCommands, buildError := auditsBuilder.Build()
	if buildError != nil {
		application.commandBuildError = fmt.Errorf(commandBuildErrorTemplateConstant, buildError)
	}
	rootCommand.AddCommand(auditCommands...)

	application.rootCommand = rootCommand
	return application
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return NewApplication().Execute()
}

// Execute runs the command hierarchy with the process arguments and flushes the logger.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy with explicit arguments.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	if application.commandBuildError != nil {
		return application.commandBuildError
	}

	application.rootCommand.Version = application.versionResolver(application.rootCommand.Context())
	application.rootCommand.SetArgs(flags.NormalizeToggleArguments(arguments))
	executionError := application.rootCommand.Execute()
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// SetOutput redirects rendered output and the error stream, which also receives log entries.
func (application *Application) SetOutput(output io.Writer, errorOutput io.Writer) {
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(errorOutput)
}

// SetInput redirects the stream confirmation prompts read from.
func (application *Application) SetInput(input io.Reader) {
	application.rootCommand.SetIn(input)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	configurationFilePath := application.homeExpander.Expand(application.rootFlags.configurationFilePath)
	loadedConfiguration, loadError := application.configurationLoader.Load(utils.ConfigurationRequest{
		ExplicitFilePath: configurationFilePath,
		Defaults:         application.defaultConfigurationValues(),
	}, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)

	logger, loggerError := application.createLogger(command)
	if loggerError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerError)
	}
	application.logger = logger

	storeConfiguration := application.configuration.Session.Sanitize().Store
	storeLocation := fmt.Sprintf(storeLocationTemplateConstant, storeConfiguration.Backend, application.homeExpander.Expand(storeConfiguration.Path))

	application.logger.Debug(configurationResolvedMessageConstant,
		zap.String(logFieldLogLevelConstant, application.configuration.Common.LogLevel),
		zap.String(logFieldLogFormatConstant, application.configuration.Common.LogFormat),
		zap.String(logFieldConfigFileConstant, loadedConfiguration.ConfigFileUsed),
		zap.String(logFieldStoreLocationConstant, storeLocation),
		zap.String(logFieldCommandPathConstant, command.CommandPath()),
		zap.Strings(logFieldArgumentsConstant, command.Flags().Args()),
	)

	executionContext := application.commandContextAccessor.WithConfigurationFilePath(command.Context(), loadedConfiguration.ConfigFileUsed)
	executionContext = application.commandContextAccessor.WithStoreLocation(executionContext, storeLocation)
	command.SetContext(executionContext)
	return nil
}

func (application *Application) defaultConfigurationValues() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range session.DefaultConfigurationValues() {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range audits.DefaultConfigurationValues(cliConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	return defaultValues
}

// applyFlagOverrides layers explicitly set root flags over the loaded configuration.
func (application *Application) applyFlagOverrides(command *cobra.Command) {
	overrides := []struct {
		flagName string
		value    string
		target   *string
	}{
		{flagName: logLevelFlagNameConstant, value: application.rootFlags.logLevel, target: &application.configuration.Common.LogLevel},
		{flagName: logFormatFlagNameConstant, value: application.rootFlags.logFormat, target: &application.configuration.Common.LogFormat},
		{flagName: storePathFlagNameConstant, value: application.rootFlags.storePath, target: &application.configuration.Session.Store.Path},
	}
	for _, override := range overrides {
		if command.Flags().Changed(override.flagName) {
			*override.target = override.value
		}
	}
}

// createLogger binds the logger to the command's error stream so redirected runs capture it.
func (application *Application) createLogger(command *cobra.Command) (*zap.Logger, error) {
	logLevel, levelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if levelError != nil {
		return nil, levelError
	}
	logFormat, formatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if formatError != nil {
		return nil, formatError
	}

	loggerFactory := application.loggerFactory
	if errorOutput := command.ErrOrStderr(); errorOutput != os.Stderr {
		loggerFactory = utils.NewLoggerFactoryWithOutput(errorOutput)
	}
	return loggerFactory.CreateLogger(logLevel, logFormat)
}

// syncLoggerInstance flushes logger, ignoring the errors terminals and pipes report for fsync.
func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	for _, ignoredError := range []error{syscall.ENOTSUP, syscall.EINVAL, syscall.ENOTTY} {
		if errors.Is(syncError, ignoredError) {
			return nil
		}
	}
	return syncError
}

func resolveBuildVersion(context.Context) string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available || len(buildInformation.Main.Version) == 0 || buildInformation.Main.Version == develBuildVersionConstant {
		return developmentVersionConstant
	}
	return buildInformation.Main.Version
}
