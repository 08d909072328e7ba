// Package utils provides small packages shared by the commands.
//
//   - logging: logrus loggers writing to the command's stderr
//   - notify: status lines, titles and progress groups
//   - timer: stage and total timing of a command
package utils
