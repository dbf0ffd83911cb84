package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session.
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// StudentStrikeCountKey returns the cache key for a student's integrity
// strike counter on one exam.
func (r *CacheKeyStruct) StudentStrikeCountKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:strikes", studentID, examID)
}

// ExamMonitorChannel returns the Redis Pub/Sub channel name for an exam's
// live monitor stream.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()
