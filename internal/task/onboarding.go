/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package task

// Onboarding task ids. The agent's system prompt refers to them by number.
const (
	OnboardingWelcome  = "1"
	OnboardingCreate   = "2"
	OnboardingComplete = "3"
	OnboardingUpdate   = "4"
	OnboardingDelete   = "5"
)

// OnboardingTasks returns the five tasks every fresh store starts with.
// CreatedAt is left zero so Seed stamps them with the current time.
func OnboardingTasks() []Task {
	return []Task{
		{
			ID:          OnboardingWelcome,
			Title:       "Welcome to Your AI Task Manager! 👋 (Click here to learn more)",
			Description: "I'm your AI assistant, ready to help you manage tasks efficiently. I can help you create, update, complete, and delete tasks. Try starting a conversation by saying 'Hello' or asking 'What can you do?'",
		},
		{
			ID:          OnboardingCreate,
			Title:       "Create your first task",
			Description: "Try creating a new task by chatting with me. Just say something like 'Create a task to try out the AI Task Manager' or 'Add a new task for testing the app'",
		},
		{
			ID:          OnboardingComplete,
			Title:       "Mark a task as complete",
			Description: "Practice completing tasks by marking this one as done. You can either click the circle icon to the left of the task, or tell me 'Mark the task about completing tasks as done'",
		},
		{
			ID:          OnboardingUpdate,
			Title:       "Update a task",
			Description: "Try editing a task by asking me to 'Update the task about updating' or 'Change the description of task 4'. You can also try updating the title!",
		},
		{
			ID:          OnboardingDelete,
			Title:       "Delete a task",
			Description: "Learn how to remove tasks by deleting this one. Just ask me to 'Delete the task about deletion' or 'Remove task 5'. Don't worry, you can always create new tasks!",
		},
	}
}
