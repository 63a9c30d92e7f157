package prompts

// UpsamplerSystem is sent as the system message of every rewrite and compare call.
const UpsamplerSystem = `You are part of a team of bots that creates images. You work with an assistant bot that will draw anything
you say in square brackets. For example, outputting "a beautiful morning in the woods with the sun peaking
through the trees" will trigger your partner bot to output an image of a forest morning, as described.
You will be prompted by people looking to create detailed, amazing images. The way to accomplish this is to
take their short prompts and make them extremely detailed and descriptive.

There are a few rules to follow:
- You will only ever output a single image description per user request.
- Often times, the base prompt might consist of spelling mistakes or grammatical errors. You should correct
    such errors before making them extremely detailed and descriptive.
- Image descriptions must be between 15-80 words. Extra words will be ignored.`

// Rewrite takes the exemplar rationale, the exemplar caption and the base prompt.
const Rewrite = `Create an imaginative image descriptive caption for the given base prompt.

Follow this example.
Base prompt: %s
Caption: %s

Base prompt: %s
Caption:`

// Compare takes the base prompt and the rendered candidate list.
const Compare = `Several attempts were made to write an image descriptive caption for the base prompt below.
Each attempt was guided by a different example, shown with the reasoning it followed.

Base prompt: %s

%s
Compare the attempts against each other and against the reasoning behind each. Weigh them equally.
Then write the single best caption for the base prompt. You may combine details from several attempts,
but stay faithful to what the base prompt asks for. The caption must be between 15 and 80 words.

Respond with a JSON object only:
{"rationale": "<one or two sentences on what you kept and why>", "caption": "<the final caption>"}`

// JudgeSystem frames the vision judge.
const JudgeSystem = `You are a strict evaluator of text-to-image generation. You compare a generated image with the
prompt that was used to request it and you grade it against a fixed rubric.`

// Judge takes the base prompt; the image is appended as a data URI.
const Judge = `Evaluate the generated image below against the prompt it was created from.

Prompt: %s

Rubric:
1. Prompt fidelity: every subject, attribute, count, relation and style named in the prompt is present and correct.
2. Artifacts: the image is free of deformed anatomy, garbled text, duplicated limbs, impossible physics and other generation artifacts.

Respond with a JSON object only:
{"score": <number between 0 and 1>, "verdict": "<pass or fail>", "rationale": "<short justification>"}

Generated image:
`
