package global

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"pokearena/client/errorutils"
)

type rollingFileWriter struct {
	FileDirectory string
	FileName      string
}

func NewRollingFileWriter(fileDir string, fileName string) rollingFileWriter {
	absFileDir, err := filepath.Abs(fileDir)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(absFileDir, 0750); err != nil {
		panic(err)
	}

	return rollingFileWriter{
		FileDirectory: absFileDir,
		FileName:      fileName,
	}
}

const (
	mb         = 1000000
	maxLogSize = 2.5 * mb
	maxLogs    = 2
)

func (w rollingFileWriter) getFullFilePath() string {
	return filepath.Join(w.FileDirectory, fmt.Sprintf("%s.log", w.FileName))
}

func (w rollingFileWriter) getLogs(pattern string) ([]string, error) {
	fileSystem := os.DirFS(w.FileDirectory)

	// all log files ending in -*.log are archived logs
	// meaning they aren't getting updated
	logMatches, err := fs.Glob(fileSystem, pattern)
	if err != nil {
		return nil, err
	}

	return lo.Map(logMatches, func(log string, _ int) string {
		return filepath.Join(w.FileDirectory, log)
	}), nil
}

func (w rollingFileWriter) Write(b []byte) (n int, err error) {
	mainLogFile, err := os.OpenFile(w.getFullFilePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}

	stats, err := mainLogFile.Stat()
	if err != nil {
		mainLogFile.Close()
		return 0, err
	}

	size := stats.Size()
	// if the current log file is small enough, just append to it
	if size < maxLogSize {
		defer mainLogFile.Close()
		return mainLogFile.Write(b)
	}

	// close since we are going to rename the main file
	mainLogFile.Close()
	w.updateLogIndices()

	logMatches, err := w.getLogs(w.FileName + "-*.log")
	if err != nil {
		return 0, err
	}

	// At this point there is no main log file (they're all numbered:
	// name-1.log, name-2.log, etc.), so count the one about to be created.
	numberOfLogFiles := len(logMatches) + 1

	if numberOfLogFiles > maxLogs {
		difference := numberOfLogFiles - maxLogs
		var lastFile *os.File
		var latestFileIndex int64

		// delete an old file for as many times as necessary
		for range difference {
			for _, fileName := range logMatches {
				fileIndex := getLogIndex(w.FileName, fileName)

				if fileIndex > latestFileIndex {
					latestFileIndex = fileIndex
				} else {
					continue
				}

				file, err := os.Open(fileName)
				if err != nil {
					log.Print(err)
					continue
				}

				lastFile = file
			}

			if lastFile != nil {
				if err := os.Remove(lastFile.Name()); err != nil {
					return 0, err
				}
			}
		}
	}

	// Append to a new log file
	mainLogFile, err = os.OpenFile(w.getFullFilePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}
	defer mainLogFile.Close()

	return mainLogFile.Write(b)
}

func (w rollingFileWriter) indexedLog(fileName string, index int) string {
	return filepath.Join(w.FileDirectory, fmt.Sprintf("%s-%d.log", fileName, index))
}

func (w rollingFileWriter) updateLogIndices() error {
	logMatches, err := w.getLogs(w.FileName + "-*.log")
	if err != nil {
		return err
	}

	for _, logFile := range logMatches {
		index := getLogIndex(w.FileName, logFile)

		// get rid of messed up log files
		if index < 0 {
			if err := os.Remove(logFile); err != nil {
				return err
			}
		}

		index++
		// The mod prefix keeps renames from clobbering each other:
		// if name-1.log becomes name-2.log while name-2.log still exists,
		// the new and old logs would conflict.
		newFileName := w.indexedLog("mod-"+w.FileName, int(index))
		if err := os.Rename(logFile, newFileName); err != nil {
			return err
		}
	}

	modLogMatches, err := w.getLogs(fmt.Sprintf("mod-%s-*.log", w.FileName))
	if err != nil {
		return err
	}

	// Clean up mod prefixes
	for _, logFile := range modLogMatches {
		filenameOnly := filepath.Base(logFile)
		newFileName, _ := strings.CutPrefix(filenameOnly, "mod-")

		newFullPath := filepath.Join(filepath.Dir(logFile), newFileName)

		if err := os.Rename(logFile, newFullPath); err != nil {
			return err
		}
	}

	// Rename main log file
	if err := os.Rename(w.getFullFilePath(), w.indexedLog(w.FileName, 1)); err != nil {
		return err
	}

	return nil
}

func getLogIndex(baseFileName string, filePath string) int64 {
	fileName, _ := strings.CutSuffix(filepath.Base(filePath), ".log")
	indexStr, _ := strings.CutPrefix(fileName, baseFileName+"-")

	index := errorutils.Must(strconv.ParseInt(indexStr, 10, 32))

	return index
}
